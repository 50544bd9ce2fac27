// Package pricegrid generates arithmetic price ladders: evenly spaced main
// lines with an optional parallel line offset above each one. The engine uses
// the ladder to band pending-order maintenance; strategies may use it to
// normalize stop distances onto institutional levels.
package pricegrid

import (
	"fmt"

	"profit_guard_go/utils"
)

// Check is the validation outcome for a ladder setting.
type Check string

const (
	CheckPassed      Check = "CHECK_ARG_LINE_GENERATOR_PASSED"
	ErrNoEnoughStep  Check = "ERR_NO_ENOUGH_STEP"
	ErrStartOverEnd  Check = "ERR_START_OVER_END"
	ErrAddOverStep   Check = "ERR_ADD_OVER_STEP"
	ErrPriceOutLines Check = "ERR_PRICE_OUT_LINES"
)

// NearLinesType classifies where a price sits relative to the ladder.
type NearLinesType string

const (
	// TypeInsideParallel: price is inside a main-line/parallel-line channel.
	TypeInsideParallel NearLinesType = "TYPE_INSIDE_PARALLEL"
	// TypeBetweenParallels: price is in the gap between one channel's parallel
	// line and the next main line.
	TypeBetweenParallels NearLinesType = "TYPE_BETWEEN_PARALLELS"
	ErrInvalidLines      NearLinesType = "ERR_INVALID_LINES"
)

// Setting describes one arithmetic ladder: main lines at Start + k*Step for
// prices within [Start, End], each with a parallel line Add above it.
type Setting struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Step  float64 `yaml:"step"`
	Add   float64 `yaml:"add"`
}

// Prices is the pair of ladder lines neighboring a given price.
type Prices struct {
	Type  NearLinesType
	Upper float64
	Lower float64
}

// Generator produces the neighboring ladder lines for arbitrary prices.
type Generator struct {
	setting Setting
}

// NewGenerator builds a generator after validating the setting.
func NewGenerator(s Setting) (*Generator, error) {
	if c := CheckSetting(s); c != CheckPassed {
		return nil, fmt.Errorf("invalid price ladder setting: %s", c)
	}
	return &Generator{setting: s}, nil
}

// CheckSetting validates a ladder setting without constructing a generator.
func CheckSetting(s Setting) Check {
	if s.Step <= utils.Epsilon {
		return ErrNoEnoughStep
	}
	if s.Start >= s.End {
		return ErrStartOverEnd
	}
	if s.Add < 0 || s.Add >= s.Step {
		return ErrAddOverStep
	}
	return CheckPassed
}

// Setting returns a copy of the generator's configuration.
func (g *Generator) Setting() Setting {
	return g.setting
}

// Generate returns the ladder lines directly above and below the given price.
func (g *Generator) Generate(price float64) (Prices, Check) {
	s := g.setting
	if price < s.Start || price > s.End {
		return Prices{Type: ErrInvalidLines}, ErrPriceOutLines
	}

	// Index of the main line at or below the price.
	k := int((price - s.Start) / s.Step)
	main := s.Start + float64(k)*s.Step
	parallel := main + s.Add

	if s.Add > 0 && price <= parallel {
		// Inside the channel between a main line and its parallel.
		return Prices{Type: TypeInsideParallel, Upper: parallel, Lower: main}, CheckPassed
	}

	next := main + s.Step
	lower := main
	if s.Add > 0 {
		lower = parallel
	}
	if next > s.End {
		next = s.End
	}
	return Prices{Type: TypeBetweenParallels, Upper: next, Lower: lower}, CheckPassed
}

// Band returns a maintenance band around the given price: the neighboring
// lines widened by margin ladder steps on each side. Pending orders outside
// the band are candidates for removal.
func (g *Generator) Band(price float64, margin int) (upper, lower float64, ok bool) {
	p, c := g.Generate(price)
	if c != CheckPassed {
		return 0, 0, false
	}
	width := float64(margin) * g.setting.Step
	return p.Upper + width, p.Lower - width, true
}
