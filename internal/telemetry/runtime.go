package telemetry

import (
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap/zapcore"
)

// Unknown fills any runtime fact the platform does not provide.
const Unknown = "unknown"

// Environment variables carrying platform-provided runtime facts.
const (
	envIsRemote = "RUNTIME_IS_REMOTE"
	envRegion   = "RUNTIME_REGION"
	envTaskID   = "RUNTIME_TASK_ID"
	envImageID  = "RUNTIME_IMAGE_ID"
)

// RuntimeContext carries the deployment facts of this container. It is
// populated once at process start and read-only afterwards; every log
// record and the tracer resource carry these fields. Absent facts default
// to "unknown": they describe where the code runs, they never gate
// whether it runs.
type RuntimeContext struct {
	IsRemote    bool
	Environment string
	Version     string
	Region      string
	TaskID      string
	ImageID     string

	// BootID is generated per process start and distinguishes cold starts
	// when the platform provides no task identifier. It is never a
	// substitute for TaskID.
	BootID string
}

// DetectRuntime reads platform facts from the environment. Environment and
// version come from service configuration; placement facts come from the
// platform.
func DetectRuntime(environment, version string) RuntimeContext {
	return RuntimeContext{
		IsRemote:    os.Getenv(envIsRemote) == "true",
		Environment: orUnknown(environment),
		Version:     orUnknown(version),
		Region:      envOrUnknown(envRegion),
		TaskID:      envOrUnknown(envTaskID),
		ImageID:     envOrUnknown(envImageID),
		BootID:      uuid.NewString(),
	}
}

// MarshalLogObject encodes the runtime facts as a nested log field.
func (rc RuntimeContext) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddBool("is_remote", rc.IsRemote)
	enc.AddString("environment", rc.Environment)
	enc.AddString("version", rc.Version)
	enc.AddString("region", rc.Region)
	enc.AddString("task_id", rc.TaskID)
	enc.AddString("image_id", rc.ImageID)
	enc.AddString("boot_id", rc.BootID)
	return nil
}

// Attributes returns the runtime facts as span resource attributes.
// Environment and version are carried by the semconv resource attributes
// instead, so they are not repeated here.
func (rc RuntimeContext) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool("runtime.is_remote", rc.IsRemote),
		attribute.String("runtime.region", rc.Region),
		attribute.String("runtime.task_id", rc.TaskID),
		attribute.String("runtime.image_id", rc.ImageID),
		attribute.String("runtime.boot_id", rc.BootID),
	}
}

func envOrUnknown(key string) string {
	return orUnknown(os.Getenv(key))
}

func orUnknown(v string) string {
	if v == "" {
		return Unknown
	}
	return v
}
