package utils

import (
	"errors"
	"math"
)

// ErrNoSamples is returned when every source in a reconciliation group failed.
var ErrNoSamples = errors.New("no samples to aggregate")

// RoundFixed rounds v to the given number of decimal places.
func RoundFixed(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale
}

// RoundSig rounds v to the given number of significant digits, independent of
// magnitude. Used for display-friendly volume figures.
func RoundSig(v float64, digits int) float64 {
	if v == 0 || digits <= 0 {
		return 0
	}
	mag := math.Ceil(math.Log10(math.Abs(v)))
	scale := math.Pow10(digits - int(mag))
	return math.Round(v*scale) / scale
}

// MeanNonNil averages the non-nil samples. An all-nil (or empty) input is an
// explicit error rather than zero or NaN.
func MeanNonNil(samples []*float64) (float64, error) {
	var sum float64
	var n int
	for _, s := range samples {
		if s == nil {
			continue
		}
		sum += *s
		n++
	}
	if n == 0 {
		return 0, ErrNoSamples
	}
	return sum / float64(n), nil
}

// Median3 returns the median of three values.
func Median3(a, b, c float64) float64 {
	return math.Max(math.Min(a, b), math.Min(math.Max(a, b), c))
}
