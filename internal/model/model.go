// Package model holds the domain types shared across the speed-enforcement
// core: observations, tickets, and the day bucketing used to suppress
// duplicate tickets for the same plate.
package model

// Road, Mile, Limit, Speed are carried on the wire as unsigned 16-bit
// integers; Timestamp as an unsigned 32-bit integer of seconds from an
// unspecified epoch.
type (
	Road      = uint16
	Mile      = uint16
	Limit     = uint16
	Speed     = uint16
	Timestamp = uint32
)

// Day is the calendar-day proxy used for ticket suppression: floor(t/86400).
type Day = uint32

const secondsPerDay = 86400

// DayOf returns the day bucket containing t.
func DayOf(t Timestamp) Day {
	return Day(t) / secondsPerDay
}

// Observation is a single (timestamp, mile, limit) report recorded for a
// (plate, road) key. limit is carried per-observation because the detector
// never needs to look anywhere else to check a candidate pair against the
// road's speed limit.
type Observation struct {
	Timestamp Timestamp
	Mile      Mile
	Limit     Limit
}

// Ticket is a fully-formed speeding ticket, ready to hand to a dispatcher.
// The invariant T1 < T2 always holds; Mile1/T1 describe the earlier
// observation of the pair, Mile2/T2 the later one.
type Ticket struct {
	Plate string
	Road  Road
	Mile1 Mile
	T1    Timestamp
	Mile2 Mile
	T2    Timestamp
	Speed Speed
}

// DayRange returns the inclusive [start, end] day range this ticket covers.
func (t Ticket) DayRange() (start, end Day) {
	return DayOf(t.T1), DayOf(t.T2)
}
