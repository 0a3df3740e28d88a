package tools

import "context"

// TaskFunc defines a function executed asynchronously.
type TaskFunc func(ctx context.Context) error

// Dispatch runs the provided task in a separate goroutine. Fire-and-forget:
// the task owns its error handling, nothing is reported back.
func Dispatch(ctx context.Context, _ string, fn TaskFunc) {
	go func() {
		_ = fn(ctx)
	}()
}
