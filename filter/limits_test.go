package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"profit_guard_go/venue"
)

func limitOrders() []venue.Order {
	base := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	return []venue.Order{
		{ID: "1", Price: 1.10, PlacedTime: base},
		{ID: "2", Price: 1.20, PlacedTime: base.Add(1 * time.Hour)},
		{ID: "3", Price: 1.05, PlacedTime: base.Add(2 * time.Hour)},
		{ID: "4", Price: 1.30, PlacedTime: base.Add(3 * time.Hour)},
	}
}

func TestLimitsByIndex(t *testing.T) {
	orders := limitOrders()

	p, ok := LimitsByIndex{Count: 2}.Calculate(orders)
	require.True(t, ok)
	require.InDelta(t, 1.20, p.Upper, 1e-9)
	require.InDelta(t, 1.10, p.Lower, 1e-9)

	// Zero count considers the whole book.
	p, ok = LimitsByIndex{}.Calculate(orders)
	require.True(t, ok)
	require.InDelta(t, 1.30, p.Upper, 1e-9)
	require.InDelta(t, 1.05, p.Lower, 1e-9)

	_, ok = LimitsByIndex{Count: 2}.Calculate(nil)
	require.False(t, ok)
}

func TestLimitsByTimeRange(t *testing.T) {
	orders := limitOrders()
	base := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

	l := LimitsByTimeRange{From: base.Add(30 * time.Minute), To: base.Add(150 * time.Minute)}
	p, ok := l.Calculate(orders)
	require.True(t, ok)
	require.InDelta(t, 1.20, p.Upper, 1e-9)
	require.InDelta(t, 1.05, p.Lower, 1e-9)

	empty := LimitsByTimeRange{From: base.Add(10 * time.Hour), To: base.Add(11 * time.Hour)}
	_, ok = empty.Calculate(orders)
	require.False(t, ok)
}
