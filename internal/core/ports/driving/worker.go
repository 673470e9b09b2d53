package driving

import "context"

// Worker consumes queued creation tasks in the background.
type Worker interface {
	// Start launches the consumers. It returns immediately.
	Start(ctx context.Context) error

	// Stop cancels in-flight tasks and waits for consumers to exit.
	Stop() error
}
