package journal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"profit_guard_go/trade"
)

func TestJournalTotals(t *testing.T) {
	j := New()
	require.Equal(t, int64(1), j.BeginCycle())
	require.Equal(t, int64(2), j.BeginCycle())

	j.Record(Entry{Cycle: 2, PositionID: "1", Task: "break_even", Result: trade.OrderPlacedSuccessfully, Attempts: 1})
	j.Record(Entry{Cycle: 2, PositionID: "2", Task: "trailing_stop", Result: trade.ErrSendFailed, Attempts: 3})

	totals := j.Totals()
	require.Equal(t, int64(2), totals.Cycles)
	require.Equal(t, 2, totals.Submitted)
	require.Equal(t, 1, totals.Succeeded)
	require.Equal(t, 1, totals.Failed)
}

func TestJournalLastOutcome(t *testing.T) {
	j := New()
	j.Record(Entry{Cycle: 1, PositionID: "1", Task: "break_even", Result: trade.ErrSendFailed})
	j.Record(Entry{Cycle: 2, PositionID: "1", Task: "break_even", Result: trade.OrderPlacedSuccessfully})

	e, ok := j.LastOutcome("1")
	require.True(t, ok)
	require.Equal(t, trade.OrderPlacedSuccessfully, e.Result)
	require.Equal(t, int64(2), e.Cycle)
	require.False(t, e.Time.IsZero())

	_, ok = j.LastOutcome("2")
	require.False(t, ok)
}

func TestJournalHistoryIsACopy(t *testing.T) {
	j := New()
	j.Record(Entry{Cycle: 1, PositionID: "1"})

	h := j.History()
	require.Len(t, h, 1)
	h[0].PositionID = "mutated"

	require.Equal(t, "1", j.History()[0].PositionID)
}
