package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetFlow(t *testing.T) {
	tests := []struct {
		name        string
		deposits    []float64
		withdrawals []float64
		expected    float64
	}{
		{"positive flow", []float64{100, 200}, []float64{50}, 250},
		{"negative flow", []float64{100}, []float64{150, 50}, -100},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NetFlow(tt.deposits, tt.withdrawals))
		})
	}
}

func TestAverageAndMedian(t *testing.T) {
	assert.Equal(t, 0.0, Average(nil))
	assert.Equal(t, 2.0, Average([]float64{1, 2, 3}))

	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	assert.InDelta(t, 2.138, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 0.001)
}

func TestSavingsRate(t *testing.T) {
	tests := []struct {
		name        string
		deposits    []float64
		withdrawals []float64
		expected    float64
	}{
		{"half saved", []float64{1000}, []float64{500}, 50},
		{"no deposits", nil, []float64{500}, 0},
		{"overspent", []float64{100}, []float64{200}, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SavingsRate(tt.deposits, tt.withdrawals), 0.0001)
		})
	}
}

func TestGrowthRate(t *testing.T) {
	assert.Equal(t, 0.0, GrowthRate(0, 100))
	assert.Equal(t, 50.0, GrowthRate(100, 150))
	assert.Equal(t, -25.0, GrowthRate(100, 75))
}

func TestPercentile(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}

	assert.Equal(t, 0.0, Percentile(nil, 50))
	assert.Equal(t, 30.0, Percentile(values, 50))
	assert.Equal(t, 10.0, Percentile(values, 0))
	assert.Equal(t, 50.0, Percentile(values, 100))
	assert.Equal(t, 20.0, Percentile(values, 25))
}

func TestMovingAverage(t *testing.T) {
	result := MovingAverage([]float64{1, 2, 3, 4}, 3)
	assert.Equal(t, []float64{1, 1.5, 2, 3}, result)

	assert.Nil(t, MovingAverage(nil, 3))
	assert.Nil(t, MovingAverage([]float64{1}, 0))
}

func TestDetectOutliers(t *testing.T) {
	t.Run("too few values", func(t *testing.T) {
		assert.Nil(t, DetectOutliers([]float64{1, 2}, 2))
	})

	t.Run("finds extreme value", func(t *testing.T) {
		values := []float64{10, 11, 9, 10, 12, 10, 11, 9, 10, 100}
		outliers := DetectOutliers(values, 2)
		assert.Len(t, outliers, 1)
		assert.Equal(t, 9, outliers[0].Index)
		assert.Equal(t, 100.0, outliers[0].Value)
	})

	t.Run("constant series has none", func(t *testing.T) {
		assert.Nil(t, DetectOutliers([]float64{5, 5, 5, 5}, 2))
	})
}

func TestRunway(t *testing.T) {
	assert.Equal(t, 0, Runway(0, 10))
	assert.Equal(t, 0, Runway(-50, 10))
	assert.Equal(t, -1, Runway(1000, 0))
	assert.Equal(t, 100, Runway(1000, 10))
	assert.Equal(t, 33, Runway(1000, 30))
}

func TestGini(t *testing.T) {
	assert.Equal(t, 0.0, Gini(nil))
	assert.Equal(t, 1.0, Gini([]float64{100}))

	// Equal shares approach zero inequality.
	even := Gini([]float64{25, 25, 25, 25})
	assert.Less(t, even, 0.0)
	assert.InDelta(t, -0.25, even, 0.0001)

	// Concentrated distribution scores higher than an even one.
	assert.Greater(t, Gini([]float64{97, 1, 1, 1}), even)
}

func TestHHI(t *testing.T) {
	assert.Equal(t, 0.0, HHI(nil))
	assert.Equal(t, 1.0, HHI([]float64{500}))
	assert.InDelta(t, 0.25, HHI([]float64{25, 25, 25, 25}), 0.0001)
}

func TestWeightedAverage(t *testing.T) {
	assert.Equal(t, 0.0, WeightedAverage([]float64{1, 2}, []float64{1}))
	assert.Equal(t, 0.0, WeightedAverage([]float64{1, 2}, []float64{0, 0}))
	assert.InDelta(t, 2.75, WeightedAverage([]float64{2, 3}, []float64{1, 3}), 0.0001)
}
