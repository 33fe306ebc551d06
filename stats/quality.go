package stats

import (
	"math"
)

// DataQuality mirrors the 8-field DataQualityResult struct populated by
// original_source/src/aggregate_functions/ts_data_quality_agg.cpp's
// TsDataQualityAggFinalize. The source computes these scores via an
// external FFI (anofox_ts_data_quality); no algorithm is visible in the
// retrieved sources, so the four component scores below are built as
// straightforward heuristics over gap count, zero/constant runs, and
// magnitude outliers, each in [0,1] with 1 meaning "no issue detected".
type DataQuality struct {
	StructuralScore float64
	TemporalScore   float64
	MagnitudeScore  float64
	BehavioralScore float64
	OverallScore    float64
	NGaps           uint64
	NMissing        uint64
	IsConstant      bool
}

// ComputeQuality derives a DataQuality record from a value series assumed
// already sorted by timestamp, and an optional hasValue mask marking which
// entries are present (nil means every entry is present, no gaps to flag).
func ComputeQuality(values []float64, hasValue []bool) DataQuality {
	if hasValue == nil {
		hasValue = make([]bool, len(values))
		for i := range hasValue {
			hasValue[i] = true
		}
	}

	var q DataQuality
	var nMissing, nGaps uint64
	inGap := false
	for _, present := range hasValue {
		if !present {
			nMissing++
			if !inGap {
				nGaps++
				inGap = true
			}
		} else {
			inGap = false
		}
	}
	q.NGaps = nGaps
	q.NMissing = nMissing

	uniqueSet := make(map[float64]struct{})
	for i, v := range values {
		if hasValue[i] {
			uniqueSet[v] = struct{}{}
		}
	}
	q.IsConstant = len(uniqueSet) <= 1

	q.StructuralScore = structuralScore(len(values), nGaps)
	q.TemporalScore = temporalScore(len(values), nMissing)
	q.MagnitudeScore = magnitudeScore(values, hasValue)
	q.BehavioralScore = behavioralScore(q.IsConstant, values, hasValue)
	q.OverallScore = (q.StructuralScore + q.TemporalScore + q.MagnitudeScore + q.BehavioralScore) / 4
	return q
}

// structuralScore penalizes fragmentation: many short runs between gaps
// indicate a series that is hard to model as a single structure.
func structuralScore(n int, nGaps uint64) float64 {
	if n == 0 {
		return 0
	}
	return clamp01(1 - float64(nGaps)/float64(n))
}

// temporalScore penalizes the raw fraction of missing observations.
func temporalScore(n int, nMissing uint64) float64 {
	if n == 0 {
		return 0
	}
	return clamp01(1 - float64(nMissing)/float64(n))
}

// magnitudeScore penalizes series dominated by extreme outliers, measured
// as the fraction of observed values farther than 3 standard deviations
// from the observed mean.
func magnitudeScore(values []float64, hasValue []bool) float64 {
	observed := make([]float64, 0, len(values))
	for i, v := range values {
		if hasValue[i] {
			observed = append(observed, v)
		}
	}
	if len(observed) < 2 {
		return 1
	}
	s, err := Compute(observed)
	if err != nil || s.StdDev == 0 {
		return 1
	}
	outliers := 0
	for _, v := range observed {
		if math.Abs(v-s.Mean) > 3*s.StdDev {
			outliers++
		}
	}
	return clamp01(1 - float64(outliers)/float64(len(observed)))
}

// behavioralScore penalizes degenerate behavior: a constant series, or one
// dominated by a long plateau run, is flagged as low quality for modeling
// purposes.
func behavioralScore(isConstant bool, values []float64, hasValue []bool) float64 {
	if isConstant {
		return 0
	}
	observed := make([]float64, 0, len(values))
	for i, v := range values {
		if hasValue[i] {
			observed = append(observed, v)
		}
	}
	if len(observed) == 0 {
		return 0
	}
	plateau := longestRepeatedRun(observed, false)
	return clamp01(1 - float64(plateau)/float64(len(observed)))
}
