// Package dispatch implements the dispatcher registry and the ticket
// queue/router: mapping roads to live dispatcher connections and holding
// tickets that have no dispatcher yet.
package dispatch

import (
	"sync"

	"github.com/atsika/speedtrap/internal/model"
	"github.com/atsika/speedtrap/internal/protocol"
)

// Handle is a dispatcher connection's outbound channel, as seen by the
// registry and router. Out is the connection's single outbound message
// channel, shared with heartbeats and error frames; Done is closed when
// the connection's lifecycle ends.
type Handle struct {
	ConnID string
	Out    chan<- protocol.Outbound
	Done   <-chan struct{}
}

// Registry maps a road to the dispatcher connections that declared it, in
// registration order.
//
// Tie-break policy: when a road has more than one live dispatcher, Pick
// always returns the earliest one still registered — the front of the
// slice — rather than round-robining. Any deterministic choice preserves
// exactly-once delivery; this one was chosen for simplicity.
type Registry struct {
	mu     sync.Mutex
	byRoad map[model.Road][]Handle
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byRoad: make(map[model.Road][]Handle)}
}

// Register adds h to every road in roads.
func (r *Registry) Register(h Handle, roads []model.Road) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, road := range roads {
		r.byRoad[road] = append(r.byRoad[road], h)
	}
}

// Unregister removes connID from every road in roads.
func (r *Registry) Unregister(connID string, roads []model.Road) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, road := range roads {
		list := r.byRoad[road]
		for i, h := range list {
			if h.ConnID == connID {
				r.byRoad[road] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(r.byRoad[road]) == 0 {
			delete(r.byRoad, road)
		}
	}
}

// Pick returns a currently-registered dispatcher for road, if any.
func (r *Registry) Pick(road model.Road) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.byRoad[road]
	if len(list) == 0 {
		return Handle{}, false
	}
	return list[0], true
}
