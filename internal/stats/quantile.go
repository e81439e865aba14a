// Package stats holds the small cross-sectional helpers shared by the
// panel assembler and the event-window extractor.
package stats

import (
	"math"
	"sort"
)

// QuintileCount is the number of buckets used for surprise and size
// sorts throughout the study.
const QuintileCount = 5

// Quintiles splits values into QuintileCount near-equal-size groups and
// returns each value's bucket (0 = smallest). NaN inputs get bucket -1.
//
// Ties are broken by input position: equal values keep their relative
// order, so repeated runs over the same slice always produce the same
// assignment.
func Quintiles(values []float64) []int {
	return RankBuckets(values, QuintileCount)
}

// RankBuckets assigns each value to one of n rank-based buckets.
func RankBuckets(values []float64, n int) []int {
	type indexed struct {
		value float64
		pos   int
	}

	valid := make([]indexed, 0, len(values))
	out := make([]int, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = -1
			continue
		}
		valid = append(valid, indexed{value: v, pos: i})
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].value != valid[j].value {
			return valid[i].value < valid[j].value
		}
		return valid[i].pos < valid[j].pos
	})

	// Rank r of m values lands in bucket floor(r*n/m): group sizes
	// differ by at most one.
	m := len(valid)
	for r, iv := range valid {
		out[iv.pos] = r * n / m
	}
	return out
}

// BucketByCuts assigns v to a bucket given ascending breakpoint cuts:
// bucket 0 is v < cuts[0], bucket i is cuts[i-1] <= v < cuts[i], the
// last bucket is v >= cuts[len-1]. The two-sided comparison mirrors the
// published breakpoint tables.
func BucketByCuts(v float64, cuts []float64) int {
	for i, cut := range cuts {
		if v < cut {
			return i
		}
	}
	return len(cuts)
}

// Median returns the median of values; NaN for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Stddev returns the sample standard deviation; NaN with fewer than two
// values.
func Stddev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// Mean returns the arithmetic mean; NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
