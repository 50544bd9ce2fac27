package pricegrid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckSetting(t *testing.T) {
	tests := []struct {
		name    string
		setting Setting
		want    Check
	}{
		{"valid", Setting{Start: 1.0, End: 2.0, Step: 0.1, Add: 0.02}, CheckPassed},
		{"valid without parallels", Setting{Start: 1.0, End: 2.0, Step: 0.1}, CheckPassed},
		{"zero step", Setting{Start: 1.0, End: 2.0, Step: 0, Add: 0.02}, ErrNoEnoughStep},
		{"start over end", Setting{Start: 2.0, End: 1.0, Step: 0.1, Add: 0.02}, ErrStartOverEnd},
		{"add over step", Setting{Start: 1.0, End: 2.0, Step: 0.1, Add: 0.1}, ErrAddOverStep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CheckSetting(tt.setting))
		})
	}
}

func TestGenerateInsideParallel(t *testing.T) {
	g, err := NewGenerator(Setting{Start: 1.0, End: 2.0, Step: 0.1, Add: 0.02})
	require.NoError(t, err)

	p, c := g.Generate(1.11)
	require.Equal(t, CheckPassed, c)
	require.Equal(t, TypeInsideParallel, p.Type)
	require.InDelta(t, 1.12, p.Upper, 1e-9)
	require.InDelta(t, 1.10, p.Lower, 1e-9)
}

func TestGenerateBetweenParallels(t *testing.T) {
	g, err := NewGenerator(Setting{Start: 1.0, End: 2.0, Step: 0.1, Add: 0.02})
	require.NoError(t, err)

	p, c := g.Generate(1.15)
	require.Equal(t, CheckPassed, c)
	require.Equal(t, TypeBetweenParallels, p.Type)
	require.InDelta(t, 1.20, p.Upper, 1e-9)
	require.InDelta(t, 1.12, p.Lower, 1e-9)
}

func TestGenerateOutsideLadder(t *testing.T) {
	g, err := NewGenerator(Setting{Start: 1.0, End: 2.0, Step: 0.1, Add: 0.02})
	require.NoError(t, err)

	p, c := g.Generate(2.5)
	require.Equal(t, ErrPriceOutLines, c)
	require.Equal(t, ErrInvalidLines, p.Type)
}

func TestBand(t *testing.T) {
	g, err := NewGenerator(Setting{Start: 1.0, End: 2.0, Step: 0.1})
	require.NoError(t, err)

	upper, lower, ok := g.Band(1.15, 1)
	require.True(t, ok)
	require.InDelta(t, 1.30, upper, 1e-9)
	require.InDelta(t, 1.00, lower, 1e-9)

	_, _, ok = g.Band(2.5, 1)
	require.False(t, ok)
}

func TestNewGeneratorRejectsInvalidSetting(t *testing.T) {
	_, err := NewGenerator(Setting{Start: 2.0, End: 1.0, Step: 0.1})
	require.Error(t, err)
}
