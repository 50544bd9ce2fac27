package task

import (
	"testing"

	"github.com/stretchr/testify/require"

	"profit_guard_go/venue"
)

func TestTrailingStopFollowsBestPrice(t *testing.T) {
	ts := NewTrailingStop(testInfo(), 0.0020)
	pos := longPosition()

	d, err := ts.Evaluate(pos, venue.Tick{Bid: 1.1080, Ask: 1.1082})
	require.NoError(t, err)
	ms, ok := d.(*ModifyStop)
	require.True(t, ok)
	require.InDelta(t, 1.1060, ms.Price, 1e-9)
	require.InDelta(t, 1.1080, ts.BestPrice(), 1e-9)

	ts.Apply(ms)

	// Retrace: best price holds, stop does not loosen.
	d, err = ts.Evaluate(pos, venue.Tick{Bid: 1.1050, Ask: 1.1052})
	require.NoError(t, err)
	require.IsType(t, &NoAction{}, d)
	require.InDelta(t, 1.1080, ts.BestPrice(), 1e-9)

	// New high tightens again.
	d, err = ts.Evaluate(pos, venue.Tick{Bid: 1.1090, Ask: 1.1092})
	require.NoError(t, err)
	ms, ok = d.(*ModifyStop)
	require.True(t, ok)
	require.InDelta(t, 1.1070, ms.Price, 1e-9)
}

func TestTrailingStopBestPriceSurvivesFailedSubmission(t *testing.T) {
	ts := NewTrailingStop(testInfo(), 0.0020)
	pos := longPosition()

	// Evaluate without Apply, simulating a rejected submission.
	_, err := ts.Evaluate(pos, venue.Tick{Bid: 1.1080, Ask: 1.1082})
	require.NoError(t, err)
	require.InDelta(t, 1.1080, ts.BestPrice(), 1e-9)

	// Best price is a market fact: it holds through the retrace, and the task
	// re-proposes the same stop because nothing was committed.
	d, err := ts.Evaluate(pos, venue.Tick{Bid: 1.1075, Ask: 1.1077})
	require.NoError(t, err)
	ms, ok := d.(*ModifyStop)
	require.True(t, ok)
	require.InDelta(t, 1.1060, ms.Price, 1e-9)
	require.InDelta(t, 1.1080, ts.BestPrice(), 1e-9)
}

func TestTrailingStopShortTracksAsk(t *testing.T) {
	ts := NewTrailingStop(testInfo(), 0.0020)
	pos := venue.Position{ID: "2", Symbol: "EURUSD", Side: venue.Sell, Volume: 1, OpenPrice: 1.2000}

	d, err := ts.Evaluate(pos, venue.Tick{Bid: 1.1948, Ask: 1.1950})
	require.NoError(t, err)
	ms, ok := d.(*ModifyStop)
	require.True(t, ok)
	require.InDelta(t, 1.1970, ms.Price, 1e-9)
	require.InDelta(t, 1.1950, ts.BestPrice(), 1e-9)

	ts.Apply(ms)

	// Higher ask is unfavorable for a short; best price holds.
	d, err = ts.Evaluate(pos, venue.Tick{Bid: 1.1968, Ask: 1.1970})
	require.NoError(t, err)
	require.IsType(t, &NoAction{}, d)
	require.InDelta(t, 1.1950, ts.BestPrice(), 1e-9)
}

func TestTrailingStopInvalidConfiguration(t *testing.T) {
	_, err := NewTrailingStop(testInfo(), 0).Evaluate(longPosition(), venue.Tick{Bid: 1.1080, Ask: 1.1082})
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestTrailingStopStateRoundTrip(t *testing.T) {
	ts := NewTrailingStop(testInfo(), 0.0020)
	pos := longPosition()

	d, err := ts.Evaluate(pos, venue.Tick{Bid: 1.1080, Ask: 1.1082})
	require.NoError(t, err)
	ts.Apply(d)

	st := ts.CaptureState()
	require.InDelta(t, 1.1080, st.BestPrice, 1e-9)

	restored := NewTrailingStop(testInfo(), 0.0020)
	restored.RestoreState(st)
	require.InDelta(t, 1.1080, restored.BestPrice(), 1e-9)
	require.InDelta(t, 1.1060, restored.LastAppliedStop(), 1e-9)

	// The restored ratchet refuses to loosen after a retrace.
	d, err = restored.Evaluate(pos, venue.Tick{Bid: 1.1050, Ask: 1.1052})
	require.NoError(t, err)
	require.IsType(t, &NoAction{}, d)
}
