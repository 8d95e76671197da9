package dispatch

import (
	"sync"

	"github.com/atsika/speedtrap/internal/metrics"
	"github.com/atsika/speedtrap/internal/model"
	"github.com/atsika/speedtrap/internal/protocol"
)

// Router holds tickets whose road has no live dispatcher yet, and delivers
// them — FIFO per road — as soon as one is available.
type Router struct {
	registry *Registry
	metrics  metrics.Metrics

	mu      sync.Mutex
	pending map[model.Road][]model.Ticket
	roadMu  map[model.Road]*sync.Mutex
}

// NewRouter returns a Router backed by registry, reporting queued and
// delivered ticket counts to m.
func NewRouter(registry *Registry, m metrics.Metrics) *Router {
	return &Router{
		registry: registry,
		metrics:  m,
		pending:  make(map[model.Road][]model.Ticket),
		roadMu:   make(map[model.Road]*sync.Mutex),
	}
}

// forRoad returns the mutex serializing dequeue-and-send for road, creating
// one on first use. Submit and drain both take it for the full
// pick-send-dequeue sequence, so two dispatchers registering the same road
// at nearly the same moment can't both pop and send the same queued
// ticket before either removes it.
func (r *Router) forRoad(road model.Road) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.roadMu[road]
	if !ok {
		l = &sync.Mutex{}
		r.roadMu[road] = l
	}
	return l
}

// Submit delivers t to a live dispatcher for t.Road, or queues it if none
// is currently registered. It blocks until the ticket is either accepted
// by a dispatcher's outbound channel or queued — tickets are never
// dropped.
func (r *Router) Submit(t model.Ticket) {
	lock := r.forRoad(t.Road)
	lock.Lock()
	defer lock.Unlock()

	for {
		r.mu.Lock()
		h, ok := r.registry.Pick(t.Road)
		r.mu.Unlock()
		if !ok {
			r.mu.Lock()
			r.pending[t.Road] = append(r.pending[t.Road], t)
			r.mu.Unlock()
			r.metrics.IncrementTicketsQueued()
			return
		}

		if r.send(h, t) {
			return
		}
		// The dispatcher we picked disconnected mid-send; try again,
		// possibly against a different (or no) dispatcher.
	}
}

// OnRegistered drains the pending queue for each of roads, now that at
// least one dispatcher covers them. It stops draining a road as soon as no
// dispatcher is available for it — e.g. the registering connection
// disconnected immediately.
func (r *Router) OnRegistered(roads []model.Road) {
	for _, road := range roads {
		r.drain(road)
	}
}

func (r *Router) drain(road model.Road) {
	lock := r.forRoad(road)
	lock.Lock()
	defer lock.Unlock()

	for {
		r.mu.Lock()
		queue := r.pending[road]
		if len(queue) == 0 {
			r.mu.Unlock()
			return
		}
		h, ok := r.registry.Pick(road)
		if !ok {
			r.mu.Unlock()
			return
		}
		t := queue[0]
		r.mu.Unlock()

		if !r.send(h, t) {
			// That dispatcher died before accepting; retry the pick.
			continue
		}

		r.mu.Lock()
		if q := r.pending[road]; len(q) > 0 && q[0] == t {
			r.pending[road] = q[1:]
		}
		r.mu.Unlock()
	}
}

// send hands t to h's outbound channel, returning false if h's connection
// ended before the channel accepted it. A ticket that returns false has
// not been delivered and is left for the caller to re-queue or retry.
func (r *Router) send(h Handle, t model.Ticket) bool {
	select {
	case h.Out <- protocol.TicketFromModel(t):
		r.metrics.IncrementTicketsDelivered()
		return true
	case <-h.Done:
		return false
	}
}
