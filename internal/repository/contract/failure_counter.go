package contract

import "context"

// FailureCounter tracks consecutive failed login attempts per client origin.
// The in-process implementation resets on restart; the Redis implementation
// is shared across instances.
type FailureCounter interface {
	Failures(ctx context.Context, origin string) (int, error)
	RecordFailure(ctx context.Context, origin string) error
	Reset(ctx context.Context, origin string) error
}
