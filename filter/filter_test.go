package filter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"profit_guard_go/venue"
)

func TestByDayWeek(t *testing.T) {
	// 2026-08-26 is a Wednesday.
	wednesday := time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC)

	f := NewByDayWeek(time.Monday, time.Wednesday)
	f.Now = func() time.Time { return wednesday }
	require.True(t, f.IsEligible(venue.Position{}))

	f.Now = func() time.Time { return wednesday.AddDate(0, 0, 1) } // Thursday
	require.False(t, f.IsEligible(venue.Position{}))
}

func TestByDayWeekSessionWindow(t *testing.T) {
	day := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

	f := NewByDayWeek(time.Wednesday)
	f.SessionStart = 9 * time.Hour
	f.SessionEnd = 17 * time.Hour

	f.Now = func() time.Time { return day.Add(10 * time.Hour) }
	require.True(t, f.IsEligible(venue.Position{}))

	f.Now = func() time.Time { return day.Add(8 * time.Hour) }
	require.False(t, f.IsEligible(venue.Position{}))

	f.Now = func() time.Time { return day.Add(17 * time.Hour) } // end is exclusive
	require.False(t, f.IsEligible(venue.Position{}))
}

func TestAllCombinesWithAnd(t *testing.T) {
	pos := venue.Position{ID: "7"}

	require.True(t, All{}.IsEligible(pos), "empty chain accepts everything")

	pass := NewByDayWeek() // no restriction
	day := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	fail := NewByDayWeek(time.Monday)
	fail.Now = func() time.Time { return day }

	require.True(t, All{pass}.IsEligible(pos))
	require.False(t, All{pass, fail}.IsEligible(pos))
}

func TestByCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allow.csv")
	require.NoError(t, os.WriteFile(path, []byte("id\n101\n202\n"), 0644))

	f, err := NewByCSVFile(path)
	require.NoError(t, err)

	require.True(t, f.IsEligible(venue.Position{ID: "101"}))
	require.True(t, f.IsEligible(venue.Position{ID: "202"}))
	require.False(t, f.IsEligible(venue.Position{ID: "303"}))

	// Reload picks up edits.
	require.NoError(t, os.WriteFile(path, []byte("303\n"), 0644))
	require.NoError(t, f.Reload())
	require.True(t, f.IsEligible(venue.Position{ID: "303"}))
	require.False(t, f.IsEligible(venue.Position{ID: "101"}))
}

func TestByCSVFileMissing(t *testing.T) {
	_, err := NewByCSVFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestRemoveByOrderType(t *testing.T) {
	orders := []venue.Order{
		{ID: "1", Type: venue.BuyLimit},
		{ID: "2", Type: venue.SellStop},
		{ID: "3", Type: venue.BuyLimit},
	}

	sel := RemoveByOrderType{Types: []venue.OrderType{venue.BuyLimit}}
	got := sel.Select(orders)
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].ID)
	require.Equal(t, "3", got[1].ID)

	require.Empty(t, RemoveByOrderType{}.Select(orders))
}

func TestRemoveByLocationPrice(t *testing.T) {
	orders := []venue.Order{
		{ID: "1", Price: 1.05},
		{ID: "2", Price: 1.15},
		{ID: "3", Price: 1.25},
	}

	sel := RemoveByLocationPrice{Upper: 1.20, Lower: 1.10}
	got := sel.Select(orders)
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].ID)
	require.Equal(t, "3", got[1].ID)
}
