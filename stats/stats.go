// Package stats computes descriptive statistics and data-quality scores
// over a time series' value column. Grounded on the 34-field struct
// populated by
// original_source/src/aggregate_functions/ts_stats_agg.cpp's
// TsStatsAggFinalize (field order preserved below) and the 8-field struct
// populated by
// original_source/src/aggregate_functions/ts_data_quality_agg.cpp's
// TsDataQualityAggFinalize. Both delegate their actual computation to an
// external FFI in the source; the statistics here are computed directly
// with gonum/stat.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"tsforecast/numeric"
	"tsforecast/tserr"
)

// Stats mirrors the 34-field TsStatsResult struct field-for-field.
type Stats struct {
	Length             uint64
	NNulls             uint64
	NNaN               uint64
	NZeros             uint64
	NPositive          uint64
	NNegative          uint64
	NUniqueValues      uint64
	IsConstant         bool
	NZerosStart        uint64
	NZerosEnd          uint64
	PlateauSize        uint64
	PlateauSizeNonzero uint64
	Mean               float64
	Median             float64
	StdDev             float64
	Variance           float64
	Min                float64
	Max                float64
	Range              float64
	Sum                float64
	Skewness           float64
	Kurtosis           float64
	TailIndex          float64
	BimodalityCoef     float64
	TrimmedMean        float64
	CoefVariation      float64
	Q1                 float64
	Q3                 float64
	IQR                float64
	AutocorrLag1        float64
	TrendStrength       float64
	SeasonalityStrength float64
	Entropy             float64
	Stability           float64
}

// Compute derives the full Stats record from values (already in timestamp
// order, as the source's finalize step sorts before computing).
func Compute(values []float64) (Stats, error) {
	if len(values) == 0 {
		return Stats{}, fmt.Errorf("%w: Compute requires at least one value", tserr.ErrInvalidInput)
	}

	var s Stats
	s.Length = uint64(len(values))

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	uniqueSet := make(map[float64]struct{}, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			s.NNaN++
			continue
		}
		uniqueSet[v] = struct{}{}
		switch {
		case v == 0:
			s.NZeros++
		case v > 0:
			s.NPositive++
		default:
			s.NNegative++
		}
	}
	s.NUniqueValues = uint64(len(uniqueSet))
	s.IsConstant = s.NUniqueValues <= 1

	for _, v := range values {
		if v == 0 {
			s.NZerosStart++
		} else {
			break
		}
	}
	for i := len(values) - 1; i >= 0 && values[i] == 0; i-- {
		s.NZerosEnd++
	}
	s.PlateauSize = longestRepeatedRun(values, false)
	s.PlateauSizeNonzero = longestRepeatedRun(values, true)

	s.Mean = stat.Mean(values, nil)
	s.Median, _ = medianOf(sorted)
	s.Variance = stat.Variance(values, nil)
	s.StdDev = math.Sqrt(s.Variance)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Range = s.Max - s.Min
	for _, v := range values {
		s.Sum += v
	}
	s.Skewness = stat.Skew(values, nil)
	s.Kurtosis = stat.ExKurtosis(values, nil)
	s.TailIndex = tailIndex(sorted)
	s.BimodalityCoef = bimodalityCoefficient(s.Skewness, s.Kurtosis, len(values))
	s.TrimmedMean = trimmedMean(sorted, 0.1)
	s.CoefVariation = numeric.SafeDivide(s.StdDev, s.Mean)
	s.Q1 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	s.Q3 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
	s.IQR = s.Q3 - s.Q1
	s.AutocorrLag1 = autocorrelation(values, 1)
	s.TrendStrength, s.SeasonalityStrength = trendAndSeasonalityStrength(values)
	s.Entropy = sampleEntropy(values)
	s.Stability = stability(values)

	return s, nil
}

func medianOf(sorted []float64) (float64, error) {
	return numeric.Median(sorted)
}

// longestRepeatedRun returns the length of the longest run of consecutive
// equal values. When excludeZero is true, runs of the value 0 never count
// (plateau_size_nonzero).
func longestRepeatedRun(values []float64, excludeZero bool) uint64 {
	var longest, current uint64
	for i, v := range values {
		if i > 0 && v == values[i-1] {
			current++
		} else {
			current = 1
		}
		if excludeZero && v == 0 {
			continue
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

func tailIndex(sorted []float64) float64 {
	n := len(sorted)
	if n < 10 {
		return math.NaN()
	}
	k := n / 10
	if k < 1 {
		k = 1
	}
	threshold := sorted[n-k]
	if threshold <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := n - k; i < n; i++ {
		if sorted[i] > 0 {
			sum += math.Log(sorted[i] / threshold)
		}
	}
	if sum == 0 {
		return math.NaN()
	}
	return float64(k) / sum
}

func bimodalityCoefficient(skew, exKurt float64, n int) float64 {
	kurt := exKurt + 3.0
	correction := 3.0 * math.Pow(float64(n-1), 2) / float64((n-2)*(n-3))
	if n <= 3 {
		correction = 0
	}
	return (skew*skew + 1) / (kurt + correction)
}

func trimmedMean(sorted []float64, fraction float64) float64 {
	n := len(sorted)
	trim := int(float64(n) * fraction)
	if 2*trim >= n {
		return stat.Mean(sorted, nil)
	}
	trimmed := sorted[trim : n-trim]
	return stat.Mean(trimmed, nil)
}

func autocorrelation(values []float64, lag int) float64 {
	n := len(values)
	if n <= lag {
		return math.NaN()
	}
	mean := stat.Mean(values, nil)
	var num, denom float64
	for i := 0; i < n; i++ {
		denom += (values[i] - mean) * (values[i] - mean)
	}
	for i := 0; i < n-lag; i++ {
		num += (values[i] - mean) * (values[i+lag] - mean)
	}
	return numeric.SafeDivide(num, denom)
}

// trendAndSeasonalityStrength returns the classical Hyndman "strength of
// trend" measure: 1 - Var(series minus trend)/Var(series), clamped to
// [0,1], using a simple moving-average trend. Seasonality strength is not
// computed: the second result is always NaN.
func trendAndSeasonalityStrength(values []float64) (trendStrength, seasonalityStrength float64) {
	n := len(values)
	if n < 4 {
		return math.NaN(), math.NaN()
	}
	window := n / 4
	if window < 2 {
		window = 2
	}
	trend := make([]float64, n)
	for i := range values {
		lo := i - window/2
		hi := i + window/2
		if lo < 0 {
			lo = 0
		}
		if hi >= n {
			hi = n - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += values[j]
		}
		trend[i] = sum / float64(hi-lo+1)
	}
	detrended := make([]float64, n)
	for i := range values {
		detrended[i] = values[i] - trend[i]
	}

	varDetrended := stat.Variance(values, nil)
	varResidual := stat.Variance(detrended, nil)
	trendStrength = clamp01(1 - numeric.SafeDivide(varResidual, varDetrended))

	seasonalityStrength = math.NaN()
	return trendStrength, seasonalityStrength
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return numeric.Clamp(v, 0, 1)
}

// sampleEntropy computes a coarse Shannon entropy over a 10-bin
// histogram of the series' values, normalized to [0,1].
func sampleEntropy(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return 0
	}

	const bins = 10
	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - min) / (max - min) * bins)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	entropy := 0.0
	n := float64(len(values))
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		entropy -= p * math.Log2(p)
	}
	return entropy / math.Log2(bins)
}

// stability is 1 minus the coefficient of variation of means across
// non-overlapping blocks, a common forecastability proxy.
func stability(values []float64) float64 {
	n := len(values)
	if n < 4 {
		return math.NaN()
	}
	blocks := 4
	blockSize := n / blocks
	if blockSize < 1 {
		return math.NaN()
	}
	means := make([]float64, 0, blocks)
	for b := 0; b < blocks; b++ {
		lo := b * blockSize
		hi := lo + blockSize
		if b == blocks-1 {
			hi = n
		}
		means = append(means, stat.Mean(values[lo:hi], nil))
	}
	meanOfMeans := stat.Mean(means, nil)
	sd := math.Sqrt(stat.Variance(means, nil))
	return clamp01(1 - numeric.SafeDivide(sd, meanOfMeans))
}
