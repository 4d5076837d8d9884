package httpclient

type cellState uint8

const (
	uncomputed cellState = iota
	computed
	failed
)

// lazy is a memoized value with an explicit computation state.
// It is not synchronized: only the consumer of a Response transitions it.
type lazy[T any] struct {
	state cellState
	value T
	err   error
}

// get returns the cached value or error, running compute on first use.
func (l *lazy[T]) get(compute func() (T, error)) (T, error) {
	switch l.state {
	case computed:
		return l.value, nil
	case failed:
		var zero T
		return zero, l.err
	}
	v, err := compute()
	if err != nil {
		l.fail(err)
		var zero T
		return zero, err
	}
	l.set(v)
	return v, nil
}

func (l *lazy[T]) set(v T) {
	l.state = computed
	l.value = v
	l.err = nil
}

func (l *lazy[T]) fail(err error) {
	var zero T
	l.state = failed
	l.value = zero
	l.err = err
}

func (l *lazy[T]) done() bool { return l.state == computed }
