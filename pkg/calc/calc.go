// Package calc provides the financial statistics helpers shared by the
// analytics handlers.
package calc

import (
	"math"
	"sort"
)

// NetFlow returns total deposits minus total withdrawals.
func NetFlow(deposits, withdrawals []float64) float64 {
	return Sum(deposits) - Sum(withdrawals)
}

// Sum returns the sum of values.
func Sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// Average returns the mean of values, or 0 for an empty slice.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// Median returns the median of values, or 0 for an empty slice.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// StdDev returns the sample standard deviation, or 0 with fewer than two values.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Variance returns the sample variance, or 0 with fewer than two values.
func Variance(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Average(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return sumSq / float64(n-1)
}

// SavingsRate returns net savings as a percentage of total deposits.
func SavingsRate(deposits, withdrawals []float64) float64 {
	totalDeposits := Sum(deposits)
	if totalDeposits == 0 {
		return 0
	}
	return NetFlow(deposits, withdrawals) / totalDeposits * 100
}

// GrowthRate returns the percentage change from start to end.
// A zero starting value yields 0.
func GrowthRate(start, end float64) float64 {
	if start == 0 {
		return 0
	}
	return (end - start) / start * 100
}

// CompoundGrowthRate returns the compound growth rate over the given number
// of periods for the first and last values of the series.
func CompoundGrowthRate(values []float64, periods int) float64 {
	if len(values) < 2 || periods <= 0 {
		return 0
	}
	start, end := values[0], values[len(values)-1]
	if start <= 0 {
		return 0
	}
	return (math.Pow(end/start, 1/float64(periods)) - 1) * 100
}

// BurnRate returns average spending per day over the period.
func BurnRate(withdrawals []float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	return Sum(withdrawals) / float64(days)
}

// Percentile returns the value at the given percentile (0-100) using linear
// interpolation between ranks. Empty input yields 0.
func Percentile(values []float64, percentile float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	k := float64(len(sorted)-1) * (percentile / 100)
	f := int(k)
	c := k - float64(f)

	if f+1 < len(sorted) {
		return sorted[f] + c*(sorted[f+1]-sorted[f])
	}
	return sorted[f]
}

// WeightedAverage returns the weight-adjusted mean of values. Mismatched
// lengths or a zero total weight yield 0.
func WeightedAverage(values, weights []float64) float64 {
	if len(values) == 0 || len(values) != len(weights) {
		return 0
	}
	totalWeight := Sum(weights)
	if totalWeight == 0 {
		return 0
	}
	weighted := 0.0
	for i, v := range values {
		weighted += v * weights[i]
	}
	return weighted / totalWeight
}

// MovingAverage returns the trailing moving average of values with the given
// window size. Windows at the start of the series shrink to the data available.
func MovingAverage(values []float64, windowSize int) []float64 {
	if len(values) == 0 || windowSize <= 0 {
		return nil
	}
	averages := make([]float64, len(values))
	for i := range values {
		start := i - windowSize + 1
		if start < 0 {
			start = 0
		}
		averages[i] = Average(values[start : i+1])
	}
	return averages
}

// Normalize scales values into the 0-1 range. A constant series maps to 0.5.
func Normalize(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	normalized := make([]float64, len(values))
	if minVal == maxVal {
		for i := range normalized {
			normalized[i] = 0.5
		}
		return normalized
	}
	for i, v := range values {
		normalized[i] = (v - minVal) / (maxVal - minVal)
	}
	return normalized
}

// Outlier is a value whose z-score exceeds the detection threshold.
type Outlier struct {
	Index int
	Value float64
}

// DetectOutliers finds values more than threshold standard deviations from
// the mean. Fewer than three values yields no outliers.
func DetectOutliers(values []float64, threshold float64) []Outlier {
	if len(values) < 3 {
		return nil
	}
	mean := Average(values)
	stdDev := StdDev(values)

	var outliers []Outlier
	for i, v := range values {
		z := 0.0
		if stdDev > 0 {
			z = math.Abs((v - mean) / stdDev)
		}
		if z > threshold {
			outliers = append(outliers, Outlier{Index: i, Value: v})
		}
	}
	return outliers
}

// Runway returns whole days until the balance reaches zero at the given daily
// burn rate. Returns 0 for a non-positive balance and -1 when nothing is
// being spent.
func Runway(currentBalance, burnRate float64) int {
	if currentBalance <= 0 {
		return 0
	}
	if burnRate <= 0 {
		return -1
	}
	return int(currentBalance / burnRate)
}

// Gini returns the Gini coefficient of the values (0 = perfectly even,
// approaching 1 = concentrated in one value). A single value yields 1.
func Gini(values []float64) float64 {
	total := Sum(values)
	if len(values) == 0 || total == 0 {
		return 0
	}
	if len(values) == 1 {
		return 1
	}

	proportions := make([]float64, len(values))
	for i, v := range values {
		proportions[i] = v / total
	}
	sort.Float64s(proportions)

	cumulative := 0.0
	areaUnderLorenz := 0.0
	for _, p := range proportions {
		cumulative += p
		areaUnderLorenz += cumulative
	}
	return 1 - 2*areaUnderLorenz/float64(len(proportions))
}

// HHI returns the Herfindahl-Hirschman index of the values as shares of
// their total. Zero total yields 0.
func HHI(values []float64) float64 {
	total := Sum(values)
	if total == 0 {
		return 0
	}
	hhi := 0.0
	for _, v := range values {
		p := v / total
		hhi += p * p
	}
	return hhi
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds to four decimal places.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
