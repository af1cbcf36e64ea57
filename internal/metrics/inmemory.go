package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered       uint64
	LoginsSucceeded       uint64
	LoginsFailed          uint64
	TransactionsCreated   uint64
	TransactionsUpdated   uint64
	TransactionsDeleted   uint64
	ReportDurationCount   uint64
	ReportDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersRegistered       atomic.Uint64
	loginsSucceeded       atomic.Uint64
	loginsFailed          atomic.Uint64
	transactionsCreated   atomic.Uint64
	transactionsUpdated   atomic.Uint64
	transactionsDeleted   atomic.Uint64
	reportDurationCount   atomic.Uint64
	reportDurationTotalNs atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:       m.usersRegistered.Load(),
		LoginsSucceeded:       m.loginsSucceeded.Load(),
		LoginsFailed:          m.loginsFailed.Load(),
		TransactionsCreated:   m.transactionsCreated.Load(),
		TransactionsUpdated:   m.transactionsUpdated.Load(),
		TransactionsDeleted:   m.transactionsDeleted.Load(),
		ReportDurationCount:   m.reportDurationCount.Load(),
		ReportDurationTotalNs: m.reportDurationTotalNs.Load(),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	m.usersRegistered.Add(1)
}

// IncLogin increments the login counter for the given outcome.
func (m *InMemoryRecorder) IncLogin(success bool) {
	if success {
		m.loginsSucceeded.Add(1)
		return
	}
	m.loginsFailed.Add(1)
}

// IncTransactionCreated increments transaction created counter.
func (m *InMemoryRecorder) IncTransactionCreated() {
	m.transactionsCreated.Add(1)
}

// IncTransactionUpdated increments transaction updated counter.
func (m *InMemoryRecorder) IncTransactionUpdated() {
	m.transactionsUpdated.Add(1)
}

// IncTransactionDeleted increments transaction deleted counter.
func (m *InMemoryRecorder) IncTransactionDeleted() {
	m.transactionsDeleted.Add(1)
}

// ObserveReportDuration records how long a report took to compute.
func (m *InMemoryRecorder) ObserveReportDuration(report string, duration time.Duration) {
	m.reportDurationCount.Add(1)
	m.reportDurationTotalNs.Add(duration.Nanoseconds())
}
