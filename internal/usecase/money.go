package usecase

import "math"

// Round2 rounds a monetary amount to two decimal currency units.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// amountsMatch compares two monetary amounts within a one cent tolerance.
func amountsMatch(a, b float64) bool {
	return math.Abs(a-b) <= 0.01
}
