package task

import (
	"testing"

	"github.com/stretchr/testify/require"

	"profit_guard_go/venue"
)

func twoStages() []Stage {
	return []Stage{
		{Trigger: 0.0050, Stop: 0.0010},
		{Trigger: 0.0100, Stop: 0.0040},
	}
}

func TestBreakEvenStagesAdvancesThroughTable(t *testing.T) {
	pos := longPosition()
	bes := NewBreakEvenStages(testInfo(), pos, twoStages())
	require.Equal(t, -1, bes.AppliedStage())

	// First stage reached at 60 pips of excursion.
	d, err := bes.Evaluate(pos, venue.Tick{Bid: 1.1060, Ask: 1.1062})
	require.NoError(t, err)
	ms, ok := d.(*ModifyStop)
	require.True(t, ok)
	require.InDelta(t, 1.1010, ms.Price, 1e-9)

	bes.Apply(ms)
	require.Equal(t, 0, bes.AppliedStage())

	// Second stage reached.
	d, err = bes.Evaluate(pos, venue.Tick{Bid: 1.1105, Ask: 1.1107})
	require.NoError(t, err)
	ms, ok = d.(*ModifyStop)
	require.True(t, ok)
	require.InDelta(t, 1.1040, ms.Price, 1e-9)

	bes.Apply(ms)
	require.Equal(t, 1, bes.AppliedStage())

	// Retrace back to stage-one territory never regresses the ratchet.
	d, err = bes.Evaluate(pos, venue.Tick{Bid: 1.1070, Ask: 1.1072})
	require.NoError(t, err)
	require.IsType(t, &NoAction{}, d)
	require.Equal(t, 1, bes.AppliedStage())
	require.InDelta(t, 1.1040, bes.LastAppliedStop(), 1e-9)
}

func TestBreakEvenStagesSkipsStraightToHighestReached(t *testing.T) {
	pos := longPosition()
	bes := NewBreakEvenStages(testInfo(), pos, twoStages())

	// A gap past both triggers resolves to the highest stage in one step.
	d, err := bes.Evaluate(pos, venue.Tick{Bid: 1.1105, Ask: 1.1107})
	require.NoError(t, err)
	ms, ok := d.(*ModifyStop)
	require.True(t, ok)
	require.InDelta(t, 1.1040, ms.Price, 1e-9)

	bes.Apply(ms)
	require.Equal(t, 1, bes.AppliedStage())
}

func TestBreakEvenStagesExactTriggerCounts(t *testing.T) {
	pos := longPosition()
	bes := NewBreakEvenStages(testInfo(), pos, twoStages())

	d, err := bes.Evaluate(pos, venue.Tick{Bid: 1.1050, Ask: 1.1052})
	require.NoError(t, err)
	ms, ok := d.(*ModifyStop)
	require.True(t, ok)
	require.InDelta(t, 1.1010, ms.Price, 1e-9)
}

func TestBreakEvenStagesShortSide(t *testing.T) {
	pos := venue.Position{ID: "2", Symbol: "EURUSD", Side: venue.Sell, Volume: 1, OpenPrice: 1.1000}
	bes := NewBreakEvenStages(testInfo(), pos, twoStages())

	d, err := bes.Evaluate(pos, venue.Tick{Bid: 1.0938, Ask: 1.0940})
	require.NoError(t, err)
	ms, ok := d.(*ModifyStop)
	require.True(t, ok)
	require.InDelta(t, 1.0990, ms.Price, 1e-9)
}

func TestBreakEvenStagesRejectsBadTables(t *testing.T) {
	pos := longPosition()
	tick := venue.Tick{Bid: 1.1060, Ask: 1.1062}

	cases := []struct {
		name   string
		stages []Stage
	}{
		{"empty table", nil},
		{"non-positive trigger", []Stage{{Trigger: 0, Stop: 0.0010}}},
		{"unsorted triggers", []Stage{{Trigger: 0.0100, Stop: 0.0010}, {Trigger: 0.0050, Stop: 0.0040}}},
		{"decreasing stops", []Stage{{Trigger: 0.0050, Stop: 0.0040}, {Trigger: 0.0100, Stop: 0.0010}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBreakEvenStages(testInfo(), pos, tc.stages).Evaluate(pos, tick)
			require.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestBreakEvenStagesStateRoundTrip(t *testing.T) {
	pos := longPosition()
	bes := NewBreakEvenStages(testInfo(), pos, twoStages())
	bes.Apply(&ModifyStop{Price: bes.stagePrice(1)})
	require.Equal(t, 1, bes.AppliedStage())

	st := bes.CaptureState()
	restored := NewBreakEvenStages(testInfo(), pos, twoStages())
	restored.RestoreState(st)
	require.Equal(t, 1, restored.AppliedStage())

	// Restored ratchet still refuses to regress.
	d, err := restored.Evaluate(pos, venue.Tick{Bid: 1.1060, Ask: 1.1062})
	require.NoError(t, err)
	require.IsType(t, &NoAction{}, d)
}
