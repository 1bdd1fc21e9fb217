package concurrent

import "sync"

// Slice is an append only sequence guarded by a single exclusive lock. Every
// operation, reads included, holds the lock for its whole duration so that
// they are linearizable with respect to each other.
type Slice[T any] struct {
	mutex sync.Mutex // protects items
	items []T
}

func NewSlice[T any]() *Slice[T] {
	return &Slice[T]{
		items: make([]T, 0),
	}
}

func (slice *Slice[T]) Append(item T) {
	slice.mutex.Lock()
	defer slice.mutex.Unlock()

	slice.items = append(slice.items, item)
}

// Get returns a copy of the element at index or an *OutOfRangeError if
// index is not within [0, Len())
func (slice *Slice[T]) Get(index int) (T, error) {
	slice.mutex.Lock()
	defer slice.mutex.Unlock()

	if index < 0 || index >= len(slice.items) {
		var zero T
		return zero, &OutOfRangeError{Index: index, Length: len(slice.items)}
	}

	return slice.items[index], nil
}

func (slice *Slice[T]) Len() int {
	slice.mutex.Lock()
	defer slice.mutex.Unlock()

	return len(slice.items)
}

// Items returns a snapshot of the whole sequence
func (slice *Slice[T]) Items() []T {
	slice.mutex.Lock()
	defer slice.mutex.Unlock()

	result := make([]T, len(slice.items))
	copy(result, slice.items)
	return result
}
