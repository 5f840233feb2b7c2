package app

// Loadable tracks one asynchronous load. The zero value is pending.
type Loadable[T any] struct {
	value T
	ready bool
}

// Pending returns a slot that has not been loaded.
func Pending[T any]() Loadable[T] {
	return Loadable[T]{}
}

// Ready returns a slot holding v.
func Ready[T any](v T) Loadable[T] {
	return Loadable[T]{value: v, ready: true}
}

// Get returns the loaded value and true, or the zero value and false
// while pending.
func (l Loadable[T]) Get() (T, bool) {
	return l.value, l.ready
}

// IsReady reports whether the slot has been loaded.
func (l Loadable[T]) IsReady() bool {
	return l.ready
}
