// Package latest tracks in-flight computations per view so only the newest one delivers a result.
package latest

import (
	"context"
	"errors"
	"sync"
)

var ErrSuperseded = errors.New("latest: superseded by a newer request")

type inflight struct {
	seq    uint64
	cancel context.CancelCauseFunc
}

// Tracker cancels the in-flight computation of a view key when a newer one begins.
// The zero value is ready to use.
type Tracker struct {
	mu   sync.Mutex
	seq  uint64
	runs map[string]inflight
}

func New() *Tracker {
	return &Tracker{}
}

// Ticket identifies one computation started by Begin.
type Ticket struct {
	ctx context.Context
}

// Current reports whether no newer computation for the same key has begun.
// It stays false once superseded, whatever order the computations finish in.
// A ticket with an empty key is always current.
func (tk Ticket) Current() bool {
	if tk.ctx == nil {
		return true
	}
	return !errors.Is(context.Cause(tk.ctx), ErrSuperseded)
}

// Begin starts a computation for key, cancelling the context of the previous one.
// done must be called when the computation returns.
func (t *Tracker) Begin(parent context.Context, key string) (ctx context.Context, ticket Ticket, done func()) {
	ctx, cancel := context.WithCancelCause(parent)
	if key == "" {
		return ctx, Ticket{}, func() { cancel(nil) }
	}

	t.mu.Lock()
	if t.runs == nil {
		t.runs = make(map[string]inflight)
	}
	if prev, ok := t.runs[key]; ok {
		prev.cancel(ErrSuperseded)
	}
	t.seq++
	seq := t.seq
	t.runs[key] = inflight{seq: seq, cancel: cancel}
	t.mu.Unlock()

	ticket = Ticket{ctx: ctx}
	done = func() {
		t.mu.Lock()
		if run, ok := t.runs[key]; ok && run.seq == seq {
			delete(t.runs, key)
		}
		t.mu.Unlock()
		cancel(nil)
	}
	return ctx, ticket, done
}

// Do runs fn under Begin and returns ErrSuperseded instead of its result when a newer
// computation for key began while fn was running.
func Do[T any](parent context.Context, t *Tracker, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, ticket, done := t.Begin(parent, key)
	defer done()

	v, err := fn(ctx)
	if !ticket.Current() {
		var zero T
		return zero, ErrSuperseded
	}
	return v, err
}
