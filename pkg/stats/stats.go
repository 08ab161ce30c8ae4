package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Observed returns the non-NaN values of x.
func Observed(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Mean computes the average of a slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Median returns the median value of the slice (allocates a copy).
// For an even count it averages the two middle values.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	mid := n >> 1
	if n&1 == 0 {
		return (cp[mid-1] + cp[mid]) * 0.5
	}
	return cp[mid]
}

// MeanStd returns the mean and the population (divide by n) standard deviation.
func MeanStd(x []float64) (mean, std float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	mean, variance := stat.MeanVariance(x, nil)
	n := float64(len(x))
	return mean, math.Sqrt(variance * (n - 1) / n)
}

// Std computes the population standard deviation of a slice.
func Std(x []float64) float64 {
	_, std := MeanStd(x)
	return std
}
