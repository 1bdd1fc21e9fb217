package workload

import (
	"fmt"
	"strconv"

	"appendlist/internal/concurrent"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Reading is the value found at Index by Probe
type Reading[T any] struct {
	Index int
	Value T
}

func WorkerID(index int) string {
	return "worker-" + strconv.Itoa(index)
}

// Fill registers one worker per range on coordinator, each appending every
// value of its range to list. It returns the worker ids so that later tasks
// can depend on them.
func Fill(coordinator *concurrent.Coordinator, list *concurrent.Slice[int], ranges []Range[int]) []string {
	ids := make([]string, 0, len(ranges))
	for index, r := range ranges {
		id, r := WorkerID(index), r
		ids = append(ids, id)
		coordinator.Do(id, nil, func() error {
			log.WithFields(log.Fields{"worker": id, "range": r.String()}).Debug("appending")
			for _, v := range r.Values() {
				list.Append(v)
			}

			return nil
		})
	}

	return ids
}

// Probe reads indices in order. It stops at the first failed read and returns
// the readings taken so far together with the error.
func Probe[T any](list *concurrent.Slice[T], indices []int) ([]Reading[T], error) {
	readings := make([]Reading[T], 0, len(indices))
	for _, index := range indices {
		value, err := list.Get(index)
		if err != nil {
			return readings, err
		}

		readings = append(readings, Reading[T]{Index: index, Value: value})
	}

	return readings, nil
}

// Verify checks that list holds exactly the values of ranges, in any order
func Verify(list *concurrent.Slice[int], ranges []Range[int]) error {
	counts := map[int]int{}
	for _, v := range list.Items() {
		counts[v]++
	}

	for _, r := range ranges {
		for _, v := range r.Values() {
			counts[v]--
		}
	}

	missing, duplicated := make([]int, 0), make([]int, 0)
	for v, count := range counts {
		switch {
		case count < 0:
			missing = append(missing, v)
		case count > 0:
			duplicated = append(duplicated, v)
		}
	}

	if len(missing) == 0 && len(duplicated) == 0 {
		return nil
	}

	slices.Sort(missing)
	slices.Sort(duplicated)
	return fmt.Errorf("list content mismatch: missing %v, unexpected %v", missing, duplicated)
}
