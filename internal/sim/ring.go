package sim

// Ring is a FIFO that evicts its oldest element once Cap is exceeded.
// A Cap of zero or less means unbounded.
type Ring[T any] struct {
	buf   []T
	head  int
	count int
	cap   int
}

func NewRing[T any](capacity int) *Ring[T] {
	r := &Ring[T]{cap: capacity}
	if capacity > 0 {
		r.buf = make([]T, capacity)
	}
	return r
}

func (r *Ring[T]) Cap() int { return r.cap }
func (r *Ring[T]) Len() int { return r.count }

// Push appends v, evicting the oldest element when full.
func (r *Ring[T]) Push(v T) {
	if r.cap <= 0 {
		r.buf = append(r.buf, v)
		r.count++
		return
	}
	idx := (r.head + r.count) % r.cap
	r.buf[idx] = v
	if r.count < r.cap {
		r.count++
		return
	}
	r.head = (r.head + 1) % r.cap
}

// At returns the i-th element, oldest first.
func (r *Ring[T]) At(i int) T {
	if r.cap <= 0 {
		return r.buf[i]
	}
	return r.buf[(r.head+i)%r.cap]
}

// items copies the contents, oldest first.
func (r *Ring[T]) items() []T {
	out := make([]T, r.count)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}

// Each visits elements oldest first.
func (r *Ring[T]) Each(fn func(i int, v T)) {
	for i := 0; i < r.count; i++ {
		fn(i, r.At(i))
	}
}

func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	if r.cap <= 0 {
		r.buf = r.buf[:0]
	}
	r.head = 0
	r.count = 0
}
