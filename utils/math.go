// utils/math.go
package utils

import "math"

const Epsilon = 1e-9

// FloatEquals compares two floating-point numbers for near-equality.
func FloatEquals(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// RoundToPrecision rounds a float64 to a specified number of decimal places.
func RoundToPrecision(value float64, precision int) float64 {
	pow := math.Pow(10, float64(precision))
	return math.Round(value*pow) / pow
}

// AdjustPriceToTickSize adjusts a price to conform to the tick size requirement.
// This ensures the price is valid for the instrument it is quoted on.
func AdjustPriceToTickSize(price float64, tickSize float64) float64 {
	if tickSize <= 0 {
		return price
	}
	return math.Round(price/tickSize) * tickSize
}

// FloorToStep floors a value down to the nearest multiple of step.
// Volume is always floored, never rounded up past the requested amount.
func FloorToStep(value, step float64) float64 {
	if step <= 0 {
		return value
	}
	// Epsilon guards against 0.07/0.01 evaluating to 6.999... steps.
	return math.Floor(value/step+Epsilon) * step
}

// PointsToPrice converts a distance expressed in points to a price distance.
func PointsToPrice(points int, point float64) float64 {
	return float64(points) * point
}
