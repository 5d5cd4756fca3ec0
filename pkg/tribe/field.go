package tribe

import "fmt"

// LoadingText is rendered for any field whose read has not succeeded.
const LoadingText = "Loading..."

// FieldState tracks one independent read.
type FieldState int

const (
	FieldLoading FieldState = iota
	FieldReady
	FieldFailed
)

// Field holds the latest result of one read.
type Field[T any] struct {
	Value T
	State FieldState
	Err   error

	// generation of the read that last wrote this field
	gen uint64
}

// Ready reports whether Value holds a successfully read result.
func (f Field[T]) Ready() bool { return f.State == FieldReady }

// Get returns the value and whether it is usable.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.State == FieldReady
}

// Generation returns the generation of the read that last wrote f.
func (f Field[T]) Generation() uint64 { return f.gen }

func readyField[T any](v T) Field[T] { return Field[T]{Value: v, State: FieldReady} }

func failedField[T any](prev Field[T], err error) Field[T] {
	// keep the last good value visible; a failed refresh does not blank it
	if prev.State == FieldReady {
		prev.Err = err
		return prev
	}
	return Field[T]{State: FieldFailed, Err: err}
}

// Display renders a field, falling back to the loading placeholder for
// reads that are in flight or failed.
func Display[T any](f Field[T], format func(T) string) string {
	if !f.Ready() {
		return LoadingText
	}
	if format == nil {
		return fmt.Sprint(f.Value)
	}
	return format(f.Value)
}
