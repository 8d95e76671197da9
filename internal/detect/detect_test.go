package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atsika/speedtrap/internal/model"
)

func TestScanBasicSpeedingTicket(t *testing.T) {
	// mile 8 @ t=0, mile 9 @ t=45, limit 60 -> 80mph -> speeding.
	obs := []model.Observation{
		{Timestamp: 0, Mile: 8, Limit: 60},
		{Timestamp: 45, Mile: 9, Limit: 60},
	}
	tickets := Scan(obs, 1)
	require.Len(t, tickets, 1)
	assert.Equal(t, model.Ticket{Mile1: 8, T1: 0, Mile2: 9, T2: 45, Speed: 8000}, tickets[0])
}

func TestScanUnderLimitProducesNoTicket(t *testing.T) {
	obs := []model.Observation{
		{Timestamp: 0, Mile: 8, Limit: 60},
		{Timestamp: 3600, Mile: 9, Limit: 60}, // exactly 1mph
	}
	assert.Empty(t, Scan(obs, 1))
}

func TestScanZeroDistanceNeverTickets(t *testing.T) {
	obs := []model.Observation{
		{Timestamp: 0, Mile: 8, Limit: 60},
		{Timestamp: 10, Mile: 8, Limit: 60},
	}
	assert.Empty(t, Scan(obs, 1))
}

func TestScanIdenticalTimestampsSkipped(t *testing.T) {
	obs := []model.Observation{
		{Timestamp: 10, Mile: 8, Limit: 60},
		{Timestamp: 10, Mile: 50, Limit: 60},
	}
	assert.Empty(t, Scan(obs, 1))
}

func TestScanOnlyConsidersPairsWithNewIndex(t *testing.T) {
	// Out-of-order insert: newest landed in the middle (index 1).
	obs := []model.Observation{
		{Timestamp: 0, Mile: 8, Limit: 60},
		{Timestamp: 20, Mile: 9, Limit: 60}, // newly inserted, index 1
		{Timestamp: 45, Mile: 20, Limit: 60},
	}
	tickets := Scan(obs, 1)
	// Pair (0,1) -> dm=1, dt=20 -> 180mph, speeding.
	// Pair (1,2) -> dm=11, dt=25 -> 1584mph, speeding.
	// Pair (0,2) is NOT scanned since neither endpoint is index 1.
	require.Len(t, tickets, 2)
}

func TestScanOrdersEarlierObservationFirstRegardlessOfMile(t *testing.T) {
	// The later-in-time observation has the smaller mile number.
	obs := []model.Observation{
		{Timestamp: 0, Mile: 20, Limit: 60},
		{Timestamp: 10, Mile: 5, Limit: 60},
	}
	tickets := Scan(obs, 1)
	require.Len(t, tickets, 1)
	assert.Equal(t, model.Timestamp(0), tickets[0].T1)
	assert.Equal(t, model.Mile(20), tickets[0].Mile1)
	assert.Equal(t, model.Timestamp(10), tickets[0].T2)
	assert.Equal(t, model.Mile(5), tickets[0].Mile2)
}

func TestSuppressionSingleDayBlocksSecondTicketSameDay(t *testing.T) {
	s := NewSuppression()
	assert.True(t, s.TryAccept("X", 0, 0))
	assert.False(t, s.TryAccept("X", 0, 0))
}

func TestSuppressionMultiDayTicketCoversBothDays(t *testing.T) {
	s := NewSuppression()
	require.True(t, s.TryAccept("X", 0, 1))
	assert.False(t, s.TryAccept("X", 0, 0))
	assert.False(t, s.TryAccept("X", 1, 1))
	assert.False(t, s.TryAccept("X", 1, 2))
	assert.True(t, s.TryAccept("X", 2, 2))
}

func TestSuppressionIsPerPlate(t *testing.T) {
	s := NewSuppression()
	require.True(t, s.TryAccept("X", 0, 0))
	assert.True(t, s.TryAccept("Y", 0, 0))
}

func TestDayOf(t *testing.T) {
	assert.Equal(t, model.Day(0), model.DayOf(86399))
	assert.Equal(t, model.Day(1), model.DayOf(86401))
}
