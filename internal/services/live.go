package services

import (
	"context"
	"sync"
)

// Source names where a reconciled value came from.
type Source string

const (
	SourceNone   Source = ""
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// Live is a value that starts from local data and may be replaced once by
// a remote result. Local never overwrites remote.
type Live[T any] struct {
	mu   sync.Mutex
	val  T
	src  Source
	done chan struct{}
	once sync.Once
}

func newLive[T any](initial T) *Live[T] {
	return &Live[T]{val: initial, done: make(chan struct{})}
}

func (l *Live[T]) setLocal(v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.src == SourceRemote {
		return false
	}
	l.val, l.src = v, SourceLocal
	return true
}

func (l *Live[T]) setRemote(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.val, l.src = v, SourceRemote
}

func (l *Live[T]) settle() { l.once.Do(func() { close(l.done) }) }

// Get returns the current value without blocking.
func (l *Live[T]) Get() (T, Source) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.val, l.src
}

// Done is closed when the remote attempt has settled either way.
func (l *Live[T]) Done() <-chan struct{} { return l.done }

// Wait blocks until the remote attempt settles or ctx ends, then returns
// whatever value is current.
func (l *Live[T]) Wait(ctx context.Context) (T, Source) {
	select {
	case <-l.done:
	case <-ctx.Done():
	}
	return l.Get()
}
