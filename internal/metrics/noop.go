package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(success bool) {}

// IncTransactionCreated is a no-op.
func (n *NoopRecorder) IncTransactionCreated() {}

// IncTransactionUpdated is a no-op.
func (n *NoopRecorder) IncTransactionUpdated() {}

// IncTransactionDeleted is a no-op.
func (n *NoopRecorder) IncTransactionDeleted() {}

// ObserveReportDuration is a no-op.
func (n *NoopRecorder) ObserveReportDuration(report string, duration time.Duration) {}
