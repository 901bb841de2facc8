package dat

import "errors"

var (
	// ErrEmptyInput is returned when Build is given no patterns, or an empty key.
	ErrEmptyInput = errors.New("dat: empty input")

	// ErrCapacityExceeded is returned when the double array would outgrow the
	// 32-bit index range.
	ErrCapacityExceeded = errors.New("dat: double array capacity exceeded")

	// ErrNotInitialized is returned by queries on a trie that was never built or loaded.
	ErrNotInitialized = errors.New("dat: not initialized")

	// ErrCorruptData is returned by Load when the persisted arrays are inconsistent.
	ErrCorruptData = errors.New("dat: corrupt data")
)
