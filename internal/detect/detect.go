// Package detect implements the speeding detector: scanning an observation
// sequence for pairs that imply an average speed over the road's limit,
// and the per-plate day-suppression table that enforces at most one ticket
// per plate per calendar day.
package detect

import (
	"math"

	"github.com/atsika/speedtrap/internal/model"
)

// Scan finds every pair (obs[i], obs[newIndex]) — i != newIndex — that
// implies a speed over the limit, given that obs is already sorted
// ascending by timestamp and newIndex is the position the most recently
// recorded observation landed at. Only pairs involving the new
// observation are considered: every older pair was already checked (and,
// if it qualified, already ticketed or suppressed) the last time a new
// observation triggered a scan.
//
// Candidates are returned in order of the other observation's index i,
// ascending, which is deterministic for a given observation history.
func Scan(obs []model.Observation, newIndex int) []model.Ticket {
	if newIndex < 0 || newIndex >= len(obs) {
		return nil
	}
	newer := obs[newIndex]

	var candidates []model.Ticket
	for i, other := range obs {
		if i == newIndex {
			continue
		}

		var a, b model.Observation
		switch {
		case other.Timestamp < newer.Timestamp:
			a, b = other, newer
		case other.Timestamp > newer.Timestamp:
			a, b = newer, other
		default:
			// Identical timestamps: no meaningful speed between them.
			continue
		}

		dt := b.Timestamp - a.Timestamp
		dm := absDiff(a.Mile, b.Mile)

		speedMph := float64(dm) * 3600 / float64(dt)
		if speedMph <= float64(a.Limit) {
			continue
		}

		candidates = append(candidates, model.Ticket{
			Mile1: a.Mile,
			T1:    a.Timestamp,
			Mile2: b.Mile,
			T2:    b.Timestamp,
			Speed: model.Speed(math.Round(speedMph * 100)),
		})
	}
	return candidates
}

func absDiff(a, b model.Mile) uint32 {
	if a > b {
		return uint32(a) - uint32(b)
	}
	return uint32(b) - uint32(a)
}
