package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuintiles_NearEqualGroups(t *testing.T) {
	// 12 values: group sizes must be 3,3,2,2,2 in rank order.
	values := make([]float64, 12)
	for i := range values {
		values[i] = float64(i)
	}

	buckets := Quintiles(values)

	counts := map[int]int{}
	for _, b := range buckets {
		counts[b]++
	}
	for b := 0; b < QuintileCount; b++ {
		assert.GreaterOrEqual(t, counts[b], 2)
		assert.LessOrEqual(t, counts[b], 3)
	}
	// Ordering preserved: smallest value in bucket 0, largest in 4.
	assert.Equal(t, 0, buckets[0])
	assert.Equal(t, 4, buckets[11])
}

func TestQuintiles_DeterministicTies(t *testing.T) {
	values := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}

	first := Quintiles(values)
	second := Quintiles(values)
	assert.Equal(t, first, second)

	// Ties split by position: earlier positions get lower buckets.
	assert.Equal(t, 0, first[0])
	assert.Equal(t, 4, first[9])
}

func TestQuintiles_NaN(t *testing.T) {
	values := []float64{2, math.NaN(), 1, 3, 4, 5}
	buckets := Quintiles(values)
	assert.Equal(t, -1, buckets[1])
	assert.Equal(t, 1, buckets[0]) // 2 is the second smallest of five valid values
}

func TestBucketByCuts(t *testing.T) {
	cuts := []float64{20, 40, 60, 80}

	assert.Equal(t, 0, BucketByCuts(5, cuts))
	assert.Equal(t, 1, BucketByCuts(20, cuts)) // lower bound inclusive
	assert.Equal(t, 2, BucketByCuts(59.9, cuts))
	assert.Equal(t, 4, BucketByCuts(80, cuts))
	assert.Equal(t, 4, BucketByCuts(1e9, cuts))
}

func TestMedianStddevMean(t *testing.T) {
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{1, 2, 3, 4}))
	assert.True(t, math.IsNaN(Median(nil)))

	assert.InDelta(t, 1.0, Stddev([]float64{1, 2, 3}), 1e-12)
	assert.True(t, math.IsNaN(Stddev([]float64{1})))

	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
}
