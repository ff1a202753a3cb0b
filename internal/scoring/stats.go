// Package scoring turns completed submissions into aggregate statistics.
// Every function is pure and tolerates empty input.
package scoring

import (
	"math"
	"sort"
)

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationVariance divides by n, matching the descriptive SD and alpha.
func populationVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

type Descriptive struct {
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	SD       float64 `json:"sd"`
	Median   float64 `json:"median"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Describe computes population moments. Skewness needs n >= 3 and excess
// kurtosis n >= 4; both are 0 below that or when every value is equal.
func Describe(values []float64) Descriptive {
	n := len(values)
	if n == 0 {
		return Descriptive{}
	}

	m := mean(values)
	sd := math.Sqrt(populationVariance(values))
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var skew, kurt float64
	if sd > 0 {
		var m3, m4 float64
		for _, v := range values {
			z := (v - m) / sd
			m3 += z * z * z
			m4 += z * z * z * z
		}
		if n >= 3 {
			skew = m3 / float64(n)
		}
		if n >= 4 {
			kurt = m4/float64(n) - 3
		}
	}

	return Descriptive{
		N:        n,
		Mean:     Round(m, 2),
		SD:       Round(sd, 2),
		Median:   Round(median(values), 2),
		Skewness: Round(skew, 3),
		Kurtosis: Round(kurt, 3),
		Min:      lo,
		Max:      hi,
	}
}
