package workload

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Range is the half open interval [Start, End)
type Range[T constraints.Integer] struct {
	Start T
	End   T
}

func (r Range[T]) Len() int {
	if r.End <= r.Start {
		return 0
	}

	return int(r.End - r.Start)
}

func (r Range[T]) Values() []T {
	// counting avoids overflowing T when End is its maximum value
	result := make([]T, r.Len())
	for i := range result {
		result[i] = r.Start + T(i)
	}

	return result
}

func (r Range[T]) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Partition splits [0, workers*perWorker) into one contiguous range per worker
func Partition(workers, perWorker int) []Range[int] {
	result := make([]Range[int], workers)
	for i := range result {
		result[i] = Range[int]{Start: i * perWorker, End: (i + 1) * perWorker}
	}

	return result
}
