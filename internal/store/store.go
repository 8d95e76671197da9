// Package store holds the process-wide observation index: for every
// (plate, road) pair, the ascending-by-timestamp sequence of sightings
// reported by cameras on that road. It is the only place observations are
// mutated, so every other component reasons about a consistent snapshot.
package store

import (
	"sort"
	"sync"

	"github.com/atsika/speedtrap/internal/model"
)

type key struct {
	plate string
	road  model.Road
}

// Store is safe for concurrent use by multiple connections' reader
// goroutines.
type Store struct {
	mu   sync.Mutex
	data map[key][]model.Observation
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: make(map[key][]model.Observation)}
}

// Record inserts (timestamp, mile, limit) into the sequence for
// (plate, road), keeping it sorted ascending by timestamp.
//
// If an observation with the same timestamp and mile already exists, the
// insert is a no-op (added is false). A timestamp collision with a
// different mile keeps the first-seen observation and also reports
// added=false — the wire protocol gives no way to tell which report is
// "correct", so the store picks a deterministic answer rather than
// recording both.
//
// On success it returns a snapshot of the full sequence after the insert,
// along with the index the new observation landed at, so the caller (the
// speed detector) can scan just the pairs that involve it.
func (s *Store) Record(plate string, road model.Road, mile, limit model.Mile, ts model.Timestamp) (obs []model.Observation, index int, added bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{plate, road}
	seq := s.data[k]

	i := sort.Search(len(seq), func(i int) bool { return seq[i].Timestamp >= ts })
	if i < len(seq) && seq[i].Timestamp == ts {
		// Duplicate timestamp: idempotent if mile matches, otherwise the
		// first report wins. Either way nothing changes.
		return snapshot(seq), i, false
	}

	seq = append(seq, model.Observation{})
	copy(seq[i+1:], seq[i:])
	seq[i] = model.Observation{Timestamp: ts, Mile: mile, Limit: limit}
	s.data[k] = seq

	return snapshot(seq), i, true
}

// Observations returns a snapshot of the recorded sequence for (plate, road).
func (s *Store) Observations(plate string, road model.Road) []model.Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.data[key{plate, road}])
}

func snapshot(seq []model.Observation) []model.Observation {
	out := make([]model.Observation, len(seq))
	copy(out, seq)
	return out
}
