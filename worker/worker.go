package worker

import "context"

// Worker is a long-running loop.
type Worker interface {
	Run(ctx context.Context) error
}
