package workload

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"testing"

	"appendlist/internal/concurrent"
	"appendlist/internal/state"

	"github.com/google/go-cmp/cmp"
)

func TestPartition(t *testing.T) {
	ranges := Partition(4, 25)

	expected := []Range[int]{{0, 25}, {25, 50}, {50, 75}, {75, 100}}
	if diff := cmp.Diff(expected, ranges); diff != "" {
		t.Errorf("unexpected ranges (-want +got):\n%s", diff)
	}

	for i := 1; i < len(ranges); i++ {
		if ranges[i-1].End != ranges[i].Start {
			t.Errorf("ranges %v and %v are not contiguous", ranges[i-1], ranges[i])
		}
	}
}

func TestRange(t *testing.T) {
	r := Range[uint8]{Start: 3, End: 6}

	if r.Len() != 3 {
		t.Errorf("expected length 3 but got %d", r.Len())
	}

	if diff := cmp.Diff([]uint8{3, 4, 5}, r.Values()); diff != "" {
		t.Errorf("unexpected values (-want +got):\n%s", diff)
	}

	if empty := (Range[int]{Start: 5, End: 2}); empty.Len() != 0 || len(empty.Values()) != 0 {
		t.Errorf("expected %v to be empty", empty)
	}
}

func TestFillAppendsEveryValue(t *testing.T) {
	// arrange
	list := concurrent.NewSlice[int]()
	ranges := Partition(8, 500)
	coordinator := concurrent.NewCoordinator(context.TODO(), concurrent.DefaultParallelism)

	// act
	ids := Fill(coordinator, list, ranges)
	err := coordinator.Wait()

	// assert
	if err != nil {
		t.Fatal(err)
	}

	if len(ids) != 8 || ids[0] != "worker-0" {
		t.Errorf("unexpected worker ids %v", ids)
	}

	if list.Len() != 8*500 {
		t.Fatalf("expected %d items but got %d", 8*500, list.Len())
	}

	items := list.Items()
	sort.Ints(items)
	for i, v := range items {
		if v != i {
			t.Fatalf("value %d is missing or duplicated", i)
		}
	}

	if err := Verify(list, ranges); err != nil {
		t.Error(err)
	}
}

func TestProbeStopsAtFirstFailure(t *testing.T) {
	list := concurrent.NewSlice[string]()
	for _, item := range []string{"a", "b", "c"} {
		list.Append(item)
	}

	readings, err := Probe(list, []int{1, 3, 0})

	if diff := cmp.Diff([]Reading[string]{{Index: 1, Value: "b"}}, readings); diff != "" {
		t.Errorf("unexpected readings (-want +got):\n%s", diff)
	}

	var rangeErr *concurrent.OutOfRangeError
	if !errors.As(err, &rangeErr) || rangeErr.Index != 3 || rangeErr.Length != 3 {
		t.Errorf("expected index 3 to be out of range but got %v", err)
	}
}

func TestVerifyReportsMismatch(t *testing.T) {
	list := concurrent.NewSlice[int]()
	for _, v := range []int{0, 1, 1, 3} {
		list.Append(v)
	}

	err := Verify(list, []Range[int]{{0, 3}})
	if err == nil {
		t.Fatal("expected a mismatch")
	}

	if !strings.Contains(err.Error(), "missing [2]") || !strings.Contains(err.Error(), "unexpected [1 3]") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestVerifyTopOfRange(t *testing.T) {
	list := concurrent.NewSlice[int]()
	r := Range[int]{Start: math.MaxInt - 2, End: math.MaxInt}
	for _, v := range r.Values() {
		list.Append(v)
	}

	if err := Verify(list, []Range[int]{r}); err != nil {
		t.Error(err)
	}
}

func TestRunScenario(t *testing.T) {
	// arrange
	config := state.NewConfig()
	config.Verify = true

	// act
	result, err := Run(context.TODO(), config)

	// assert
	if err != nil {
		t.Fatal(err)
	}

	if result.Total != 100 {
		t.Errorf("expected 100 elements but got %d", result.Total)
	}

	if len(result.Readings) != 1 || result.Readings[0].Index != 10 {
		t.Fatalf("expected a single reading at index 10 but got %v", result.Readings)
	}

	if v := result.Readings[0].Value; v < 0 || v >= 100 {
		t.Errorf("expected a value in [0,100) but got %d", v)
	}

	if !errors.Is(result.Failure, concurrent.ErrOutOfRange) {
		t.Errorf("expected index 100 to be out of range but got %v", result.Failure)
	}
}

func TestRunEmpty(t *testing.T) {
	config := state.NewConfig()
	config.PerWorker = 0
	config.Probes = []int{0}

	result, err := Run(context.TODO(), config)
	if err != nil {
		t.Fatal(err)
	}

	if result.Total != 0 || len(result.Readings) != 0 {
		t.Errorf("expected an empty run but got %+v", result)
	}

	if !errors.Is(result.Failure, concurrent.ErrOutOfRange) {
		t.Errorf("expected index 0 to be out of range but got %v", result.Failure)
	}
}

func TestRunAllProbesInRange(t *testing.T) {
	config := state.NewConfig()
	config.Probes = []int{0, 50, 99}
	config.Parallelism = 1

	result, err := Run(context.TODO(), config)
	if err != nil {
		t.Fatal(err)
	}

	if result.Failure != nil {
		t.Fatal(result.Failure)
	}

	if len(result.Readings) != 3 {
		t.Errorf("expected 3 readings but got %v", result.Readings)
	}
}
