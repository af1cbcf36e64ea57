// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncLogin(success bool)

	// Transaction metrics
	IncTransactionCreated()
	IncTransactionUpdated()
	IncTransactionDeleted()

	// Report metrics
	ObserveReportDuration(report string, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
