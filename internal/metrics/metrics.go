// Package metrics tracks server-wide counters, following the
// atomic-counter Metrics interface from Atsika-aznet (metrics.go): a small
// interface of Increment*/Get* pairs backed by a DefaultMetrics struct of
// atomic counters, rather than a full metrics library — there is no
// admin/observability surface here, so these counters are exposed only
// in-process through the Get* methods, not via HTTP or logs.
package metrics

import "sync/atomic"

// Metrics is the set of counters the server maintains. Implementations
// must be safe for concurrent use from every connection goroutine.
type Metrics interface {
	IncrementConnectionsAccepted()
	IncrementCamerasRegistered()
	IncrementDispatchersRegistered()
	IncrementObservationsRecorded()
	IncrementTicketsIssued()
	IncrementTicketsSuppressed()
	IncrementTicketsQueued()
	IncrementTicketsDelivered()
	IncrementProtocolErrors()
	IncrementBytesSent(n int64)
	IncrementBytesReceived(n int64)

	GetConnectionsAccepted() int64
	GetCamerasRegistered() int64
	GetDispatchersRegistered() int64
	GetObservationsRecorded() int64
	GetTicketsIssued() int64
	GetTicketsSuppressed() int64
	GetTicketsQueued() int64
	GetTicketsDelivered() int64
	GetProtocolErrors() int64
	GetBytesSent() int64
	GetBytesReceived() int64
}

// DefaultMetrics implements Metrics with atomic counters.
type DefaultMetrics struct {
	connectionsAccepted    int64
	camerasRegistered      int64
	dispatchersRegistered  int64
	observationsRecorded   int64
	ticketsIssued          int64
	ticketsSuppressed      int64
	ticketsQueued          int64
	ticketsDelivered       int64
	protocolErrors         int64
	bytesSent              int64
	bytesReceived          int64
}

// NewDefaultMetrics returns a zeroed DefaultMetrics.
func NewDefaultMetrics() *DefaultMetrics { return &DefaultMetrics{} }

func (m *DefaultMetrics) IncrementConnectionsAccepted() { atomic.AddInt64(&m.connectionsAccepted, 1) }
func (m *DefaultMetrics) IncrementCamerasRegistered()   { atomic.AddInt64(&m.camerasRegistered, 1) }
func (m *DefaultMetrics) IncrementDispatchersRegistered() {
	atomic.AddInt64(&m.dispatchersRegistered, 1)
}
func (m *DefaultMetrics) IncrementObservationsRecorded() { atomic.AddInt64(&m.observationsRecorded, 1) }
func (m *DefaultMetrics) IncrementTicketsIssued()        { atomic.AddInt64(&m.ticketsIssued, 1) }
func (m *DefaultMetrics) IncrementTicketsSuppressed()    { atomic.AddInt64(&m.ticketsSuppressed, 1) }
func (m *DefaultMetrics) IncrementTicketsQueued()        { atomic.AddInt64(&m.ticketsQueued, 1) }
func (m *DefaultMetrics) IncrementTicketsDelivered()     { atomic.AddInt64(&m.ticketsDelivered, 1) }
func (m *DefaultMetrics) IncrementProtocolErrors()       { atomic.AddInt64(&m.protocolErrors, 1) }
func (m *DefaultMetrics) IncrementBytesSent(n int64)     { atomic.AddInt64(&m.bytesSent, n) }
func (m *DefaultMetrics) IncrementBytesReceived(n int64) { atomic.AddInt64(&m.bytesReceived, n) }

func (m *DefaultMetrics) GetConnectionsAccepted() int64 {
	return atomic.LoadInt64(&m.connectionsAccepted)
}
func (m *DefaultMetrics) GetCamerasRegistered() int64 {
	return atomic.LoadInt64(&m.camerasRegistered)
}
func (m *DefaultMetrics) GetDispatchersRegistered() int64 {
	return atomic.LoadInt64(&m.dispatchersRegistered)
}
func (m *DefaultMetrics) GetObservationsRecorded() int64 {
	return atomic.LoadInt64(&m.observationsRecorded)
}
func (m *DefaultMetrics) GetTicketsIssued() int64     { return atomic.LoadInt64(&m.ticketsIssued) }
func (m *DefaultMetrics) GetTicketsSuppressed() int64 { return atomic.LoadInt64(&m.ticketsSuppressed) }
func (m *DefaultMetrics) GetTicketsQueued() int64     { return atomic.LoadInt64(&m.ticketsQueued) }
func (m *DefaultMetrics) GetTicketsDelivered() int64  { return atomic.LoadInt64(&m.ticketsDelivered) }
func (m *DefaultMetrics) GetProtocolErrors() int64    { return atomic.LoadInt64(&m.protocolErrors) }
func (m *DefaultMetrics) GetBytesSent() int64         { return atomic.LoadInt64(&m.bytesSent) }
func (m *DefaultMetrics) GetBytesReceived() int64     { return atomic.LoadInt64(&m.bytesReceived) }
