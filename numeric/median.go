package numeric

import (
	"fmt"

	"tsforecast/tserr"
)

// Median returns the median of data using a quickselect-style partial
// selection (average-linear time). For an even-length input it returns the
// mean of the two central order statistics. data is partially reordered in
// place, mirroring the source's nth_element-based approach; callers that
// need the original order preserved should pass a copy.
func Median(data []float64) (float64, error) {
	n := len(data)
	if n == 0 {
		return 0, fmt.Errorf("%w: cannot compute median of empty input", tserr.ErrInvalidInput)
	}

	mid := n / 2
	quickselect(data, 0, n-1, mid)

	if n%2 == 1 {
		return data[mid], nil
	}

	// Even count: average mid with the max of the lower half [0, mid).
	lowerMax := data[0]
	for _, v := range data[1:mid] {
		if v > lowerMax {
			lowerMax = v
		}
	}
	return (lowerMax + data[mid]) / 2.0, nil
}

// quickselect partitions data[lo:hi+1] in place so that data[k] holds the
// value that would occupy position k in sorted order (Hoare's selection
// algorithm, i.e. the nth_element contract).
func quickselect(data []float64, lo, hi, k int) {
	for lo < hi {
		pivotIdx := partition(data, lo, hi, lo+(hi-lo)/2)
		switch {
		case k < pivotIdx:
			hi = pivotIdx - 1
		case k > pivotIdx:
			lo = pivotIdx + 1
		default:
			return
		}
	}
}

func partition(data []float64, lo, hi, pivotIdx int) int {
	pivot := data[pivotIdx]
	data[pivotIdx], data[hi] = data[hi], data[pivotIdx]
	store := lo
	for i := lo; i < hi; i++ {
		if data[i] < pivot {
			data[i], data[store] = data[store], data[i]
			store++
		}
	}
	data[store], data[hi] = data[hi], data[store]
	return store
}
