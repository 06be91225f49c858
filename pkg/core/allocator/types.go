package allocator

import (
	"errors"
	"math/rand"
)

var (
	// ErrNoEligibleWorkers is returned when no worker has a positive weight
	ErrNoEligibleWorkers = errors.New("no workers with positive weight")

	// ErrUnknownWorker is returned when a worker is not in the eligible set
	ErrUnknownWorker = errors.New("unknown worker")

	// ErrInvalidWeight is returned for negative or non-finite weights
	ErrInvalidWeight = errors.New("invalid worker weight")

	// ErrDuplicateWorker is returned when the same worker ID appears twice
	ErrDuplicateWorker = errors.New("duplicate worker")

	// ErrInvalidCount is returned for negative item counts
	ErrInvalidCount = errors.New("invalid item count")

	// ErrNilArgument is returned when a required assignment or quota model is nil
	ErrNilArgument = errors.New("nil argument")

	// ErrCategoryMismatch is returned when an item does not belong to the category being allocated
	ErrCategoryMismatch = errors.New("item category mismatch")
)

// Options controls optional behaviour of Partition
type Options struct {
	// Rand shuffles each category's items before allocation when set.
	// Shuffling changes which items each worker receives, never how many.
	Rand *rand.Rand
}

// ShuffledOptions returns Options that shuffle items using the given seed
func ShuffledOptions(seed int64) Options {
	return Options{Rand: rand.New(rand.NewSource(seed))}
}
