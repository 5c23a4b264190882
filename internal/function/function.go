package function

import "context"

// StatusSuccess is the result status for a completed unit of work
const StatusSuccess = "success"

// Request is one unit of work submitted to the function
type Request struct {
	WorkID   string `json:"work_id"`
	Strategy string `json:"strategy"`
}

// Result is the outcome record of a completed invocation
type Result struct {
	WorkID   string `json:"work_id"`
	Strategy string `json:"strategy"`
	Status   string `json:"status"`
	Pages    int    `json:"pages"`
}

// Handler is the three-hook contract a workload implements.
//
// OnStart runs once per container before the first invocation, Handle runs
// once per unit of work, and OnStop runs once when the container is retired.
// Handle must be safe for concurrent use; per-invocation state belongs in
// ctx or locals.
type Handler interface {
	OnStart(ctx context.Context) error
	Handle(ctx context.Context, req Request) (*Result, error)
	OnStop(ctx context.Context) error
}
