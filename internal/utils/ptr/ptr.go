// Package ptr has small pointer helpers for optional payload fields.
package ptr

// To returns a pointer to v.
func To[T any](v T) *T {
	return &v
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// NonNil returns a pointer to s, replacing a nil slice with an empty one so
// it encodes as [] rather than being omitted.
func NonNil[T any](s []T) *[]T {
	if s == nil {
		s = []T{}
	}
	return &s
}
