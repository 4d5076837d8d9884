package dispatch

import (
	"context"
	"sync"

	"github.com/kbukum/fetchkit/httpclient"
)

// Watcher re-runs a request only when its change key moves. Each accepted
// submission publishes Loading followed by the call's outcome; an outcome
// that arrives after a newer submission is discarded.
//
// Results is conflated: a slow reader sees the latest state, not every
// transition. A Success that was never received is closed when superseded.
type Watcher struct {
	d *Dispatcher

	mu      sync.Mutex
	key     string
	keyed   bool
	gen     uint64
	current *Call
	last    Result
	out     chan Result
	closed  bool
}

// Watch creates a watcher that runs its calls on d.
func (d *Dispatcher) Watch() *Watcher {
	return &Watcher{d: d, out: make(chan Result, 1)}
}

// Submit dispatches req unless it has the same change key as the previous
// submission. It reports whether a call was started.
func (w *Watcher) Submit(ctx context.Context, req *httpclient.Request) bool {
	if req == nil {
		return false
	}
	key := req.ChangeKey()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || (w.keyed && key == w.key) {
		return false
	}
	w.key, w.keyed = key, true

	if w.current != nil {
		w.current.Cancel()
	}
	w.gen++
	w.publishLocked(Loading())

	call := w.d.Execute(ctx, req)
	w.current = call
	go w.forward(call, w.gen)
	return true
}

func (w *Watcher) forward(call *Call, gen uint64) {
	<-call.Done()
	res := call.Result()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || gen != w.gen {
		if res.IsSuccess() {
			_ = res.Response().Close()
		}
		return
	}
	w.publishLocked(res)
}

// publishLocked replaces any unread result with res. Only publishers send
// and they hold w.mu, so the send after the drain never blocks.
func (w *Watcher) publishLocked(res Result) {
	select {
	case old := <-w.out:
		if old.IsSuccess() {
			_ = old.Response().Close()
		}
	default:
	}
	w.last = res
	w.out <- res
}

// Results delivers the latest state. It is closed by Close.
func (w *Watcher) Results() <-chan Result { return w.out }

// Current returns the most recently published state. Before the first
// submission it is Loading.
func (w *Watcher) Current() Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Close cancels the running call and closes Results. An unread Success is
// closed with it.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	if w.current != nil {
		w.current.Cancel()
	}
	select {
	case old := <-w.out:
		if old.IsSuccess() {
			_ = old.Response().Close()
		}
	default:
	}
	close(w.out)
}
