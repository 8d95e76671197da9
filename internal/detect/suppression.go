package detect

import (
	"sync"

	"github.com/atsika/speedtrap/internal/model"
)

// Suppression tracks, per plate, which calendar days are already covered
// by an issued ticket. It applies across all roads for a plate, not per
// road — a ticket on one road suppresses same-day tickets on any other.
type Suppression struct {
	mu   sync.Mutex
	days map[string]map[model.Day]struct{}
}

// NewSuppression returns an empty Suppression table.
func NewSuppression() *Suppression {
	return &Suppression{days: make(map[string]map[model.Day]struct{})}
}

// TryAccept reports whether a ticket covering every day in [start, end]
// (inclusive) may be issued for plate. If so, every day in that range is
// marked covered and true is returned; otherwise nothing is mutated and
// false is returned.
func (s *Suppression) TryAccept(plate string, start, end model.Day) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	covered := s.days[plate]
	for d := start; d <= end; d++ {
		if _, ok := covered[d]; ok {
			return false
		}
	}

	if covered == nil {
		covered = make(map[model.Day]struct{}, end-start+1)
		s.days[plate] = covered
	}
	for d := start; d <= end; d++ {
		covered[d] = struct{}{}
	}
	return true
}
