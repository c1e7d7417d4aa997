// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips value to within [min, max]
func Clip(value, min, max float64) float64 {
	return math.Max(math.Min(value, max), min)
}

// ClipInterval clips value to within an r1.Interval
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// Contains returns whether value lies within the closed interval
func Contains(value float64, interval r1.Interval) bool {
	return value >= interval.Min && value <= interval.Max
}
