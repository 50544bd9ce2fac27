package calc

import (
	"fmt"

	"profit_guard_go/utils"
	"profit_guard_go/venue"
)

// Volume normalization errors. The request layer maps any of them to its
// ERR_INVALID_LOT_SIZE validation outcome.
var (
	ErrVolumeNotPositive = fmt.Errorf("volume must be positive")
	ErrVolumeBelowMin    = fmt.Errorf("volume below instrument minimum")
	ErrVolumeAboveMax    = fmt.Errorf("volume above instrument maximum")
)

// RoundVolume normalizes a requested volume to the instrument's lot rules:
// floored to the volume step, then checked against min/max. Flooring never
// silently bumps a too-small request up to the minimum; that is the caller's
// decision to make.
func RoundVolume(volume float64, info venue.SymbolInfo) (float64, error) {
	if volume <= 0 {
		return 0, ErrVolumeNotPositive
	}
	v := utils.FloorToStep(volume, info.VolumeStep)
	if info.VolumeMin > 0 && v < info.VolumeMin-utils.Epsilon {
		return 0, ErrVolumeBelowMin
	}
	if info.VolumeMax > 0 && v > info.VolumeMax+utils.Epsilon {
		return 0, ErrVolumeAboveMax
	}
	return v, nil
}
