package concurrent

import (
	"errors"
	"fmt"
)

var ErrOutOfRange = errors.New("index out of range")

// OutOfRangeError is returned by Slice.Get when the requested index is not
// within the slice bounds at the time of the check
type OutOfRangeError struct {
	Index  int
	Length int
}

func (err *OutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0,%d)", err.Index, err.Length)
}

func (err *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
