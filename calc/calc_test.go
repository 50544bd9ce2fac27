package calc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"profit_guard_go/venue"
)

func info() venue.SymbolInfo {
	return venue.SymbolInfo{
		Symbol:     "EURUSD",
		Digits:     4,
		Point:      0.0001,
		TickSize:   0.0001,
		VolumeMin:  0.01,
		VolumeMax:  100,
		VolumeStep: 0.01,
	}
}

func TestStopPrice(t *testing.T) {
	require.InDelta(t, 1.0980, StopPrice(venue.Buy, 1.1000, 0.0020, info()), 1e-9)
	require.InDelta(t, 1.1020, StopPrice(venue.Sell, 1.1000, 0.0020, info()), 1e-9)
}

func TestTakeProfitPrice(t *testing.T) {
	require.InDelta(t, 1.1050, TakeProfitPrice(venue.Buy, 1.1000, 0.0050, info()), 1e-9)
	require.InDelta(t, 1.0950, TakeProfitPrice(venue.Sell, 1.1000, 0.0050, info()), 1e-9)
}

func TestProtectivePrice(t *testing.T) {
	// The offset moves past the open price toward locked-in profit.
	require.InDelta(t, 1.1010, ProtectivePrice(venue.Buy, 1.1000, 0.0010, info()), 1e-9)
	require.InDelta(t, 1.0990, ProtectivePrice(venue.Sell, 1.1000, 0.0010, info()), 1e-9)
}

func TestStopPriceSnapsToTickSize(t *testing.T) {
	coarse := info()
	coarse.TickSize = 0.0005
	require.InDelta(t, 1.0985, StopPrice(venue.Buy, 1.1000, 0.0013, coarse), 1e-9)
}

func TestRoundVolume(t *testing.T) {
	tests := []struct {
		name    string
		volume  float64
		want    float64
		wantErr error
	}{
		{"already aligned", 0.5, 0.5, nil},
		{"floored to step", 0.057, 0.05, nil},
		{"zero volume", 0, 0, ErrVolumeNotPositive},
		{"negative volume", -1, 0, ErrVolumeNotPositive},
		{"below minimum", 0.005, 0, ErrVolumeBelowMin},
		{"above maximum", 150, 0, ErrVolumeAboveMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RoundVolume(tt.volume, info())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
