package telemetry

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDetectRuntimeDefaults(t *testing.T) {
	// Clean environment
	os.Unsetenv("RUNTIME_IS_REMOTE")
	os.Unsetenv("RUNTIME_REGION")
	os.Unsetenv("RUNTIME_TASK_ID")
	os.Unsetenv("RUNTIME_IMAGE_ID")

	rc := DetectRuntime("", "")

	assert.False(t, rc.IsRemote)
	assert.Equal(t, Unknown, rc.Environment)
	assert.Equal(t, Unknown, rc.Version)
	assert.Equal(t, Unknown, rc.Region)
	assert.Equal(t, Unknown, rc.TaskID)
	assert.Equal(t, Unknown, rc.ImageID)

	// Boot identity is generated, not defaulted
	_, err := uuid.Parse(rc.BootID)
	assert.NoError(t, err)
}

func TestDetectRuntimeFromEnvironment(t *testing.T) {
	envVars := map[string]string{
		"RUNTIME_IS_REMOTE": "true",
		"RUNTIME_REGION":    "us-ashburn-1",
		"RUNTIME_TASK_ID":   "ta-01ABC",
		"RUNTIME_IMAGE_ID":  "im-02DEF",
	}
	for key, value := range envVars {
		err := os.Setenv(key, value)
		require.NoError(t, err)
		defer os.Unsetenv(key)
	}

	rc := DetectRuntime("prod", "2.0.0")

	assert.True(t, rc.IsRemote)
	assert.Equal(t, "prod", rc.Environment)
	assert.Equal(t, "2.0.0", rc.Version)
	assert.Equal(t, "us-ashburn-1", rc.Region)
	assert.Equal(t, "ta-01ABC", rc.TaskID)
	assert.Equal(t, "im-02DEF", rc.ImageID)
}

func TestDetectRuntimeFreshBootID(t *testing.T) {
	first := DetectRuntime("dev", "1.0.0")
	second := DetectRuntime("dev", "1.0.0")

	assert.NotEqual(t, first.BootID, second.BootID)
}

func TestRuntimeContextLogFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	logger.Info("booted", zap.Object("runtime", testRuntime()))

	entries := logs.All()
	require.Len(t, entries, 1)

	runtime, ok := entries[0].ContextMap()["runtime"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, runtime["is_remote"])
	assert.Equal(t, "test", runtime["environment"])
	assert.Equal(t, "0.0.1", runtime["version"])
	assert.Equal(t, "us-east", runtime["region"])
	assert.Equal(t, "ta-123", runtime["task_id"])
	assert.Equal(t, "im-456", runtime["image_id"])
	assert.Equal(t, "boot-789", runtime["boot_id"])
}

func TestRuntimeContextAttributes(t *testing.T) {
	attrs := testRuntime().Attributes()

	assert.Contains(t, attrs, attribute.Bool("runtime.is_remote", true))
	assert.Contains(t, attrs, attribute.String("runtime.region", "us-east"))
	assert.Contains(t, attrs, attribute.String("runtime.task_id", "ta-123"))
	assert.Contains(t, attrs, attribute.String("runtime.image_id", "im-456"))
	assert.Contains(t, attrs, attribute.String("runtime.boot_id", "boot-789"))
}
