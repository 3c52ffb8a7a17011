package ranked

import "time"

// Observer defines the interface for observing state events.
type Observer interface {
	// OnFlush is called when a checkpoint flush completes.
	OnFlush(duration time.Duration, deltas int, err error)

	// OnReconcile is called when a storage scan-and-merge completes,
	// whether triggered by cache drain or by an explicit refill.
	OnReconcile(duration time.Duration, rows int, err error)
}

// NoopObserver is a no-op implementation of Observer.
type NoopObserver struct{}

func (o *NoopObserver) OnFlush(duration time.Duration, deltas int, err error)   {}
func (o *NoopObserver) OnReconcile(duration time.Duration, rows int, err error) {}
