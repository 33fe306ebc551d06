package streaming

import (
	"fmt"
	"sort"

	"tsforecast/tserr"
)

// Point is one (timestamp, value) observation on an integer or calendar
// index, depending on the series' indexing mode.
type Point struct {
	Index int64
	Value float64
}

// GenerateIntegerRange enumerates every expected index from min to max
// (inclusive) stepping by step, mirroring the source's
// GenerateIntegerRange.
func GenerateIntegerRange(min, max, step int64) []int64 {
	var result []int64
	if min > max || step <= 0 {
		return result
	}
	for v := min; v <= max; v += step {
		result = append(result, v)
	}
	return result
}

// FillGaps reconstructs a complete grid at the frequency's step, inserting
// a zero placeholder value, marked false in the hasValue slice, at any
// expected index missing from points. points must already be sorted by Index ascending
// and de-duplicated by caller.
func FillGaps(points []Point, freq Frequency) (grid []int64, values []float64, hasValue []bool, err error) {
	if len(points) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: FillGaps requires at least one observation", tserr.ErrInvalidInput)
	}
	if freq.Kind != FrequencyInteger {
		return nil, nil, nil, fmt.Errorf("%w: FillGaps currently supports FrequencyInteger only", tserr.ErrInvalidInput)
	}

	min := points[0].Index
	max := points[len(points)-1].Index
	grid = GenerateIntegerRange(min, max, freq.IntegerStep)

	byIndex := make(map[int64]float64, len(points))
	for _, p := range points {
		byIndex[p.Index] = p.Value
	}

	values = make([]float64, len(grid))
	hasValue = make([]bool, len(grid))
	for i, idx := range grid {
		if v, ok := byIndex[idx]; ok {
			values[i] = v
			hasValue[i] = true
		}
	}
	return grid, values, hasValue, nil
}

// FillForward replaces every missing value (hasValue[i] == false) with the
// most recent preceding value that has one. Leading gaps (no prior value
// yet observed) stay unfilled.
func FillForward(values []float64, hasValue []bool) []float64 {
	result := make([]float64, len(values))
	var last float64
	haveLast := false
	for i := range values {
		if hasValue[i] {
			last = values[i]
			haveLast = true
			result[i] = values[i]
			continue
		}
		if haveLast {
			result[i] = last
		}
	}
	return result
}

// SortPoints sorts a point slice by Index ascending in place, the
// precondition FillGaps assumes.
func SortPoints(points []Point) {
	sort.Slice(points, func(i, j int) bool { return points[i].Index < points[j].Index })
}
