// Package lock serializes mutations of a single entity (one user, one report)
// while leaving different entities free to proceed in parallel.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/apperr"
)

// ErrLockTimeout is returned when the key stays held past the wait budget
var ErrLockTimeout = fmt.Errorf("entity is busy: %w", apperr.ErrConflict)

// Unlock releases a held key
type Unlock func()

// Locker hands out exclusive, per-key critical sections
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// UserKey and ReportKey name the lockable entities
func UserKey(id int64) string   { return fmt.Sprintf("lock:user:%d", id) }
func ReportKey(id int64) string { return fmt.Sprintf("lock:report:%d", id) }

// localLocker is a keyed mutex for single-instance deployments and tests
type localLocker struct {
	mu      sync.Mutex
	entries map[string]*entry
	wait    time.Duration
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker returns an in-process Locker. wait bounds how long Lock
// blocks before giving up with ErrLockTimeout; zero means wait for ctx only.
func NewLocalLocker(wait time.Duration) Locker {
	return &localLocker{
		entries: make(map[string]*entry),
		wait:    wait,
	}
}

func (l *localLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	var timeout <-chan time.Time
	if l.wait > 0 {
		timer := time.NewTimer(l.wait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case e.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.ch
				l.release(key, e)
			})
		}, nil
	case <-timeout:
		l.release(key, e)
		return nil, ErrLockTimeout
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}
}

func (l *localLocker) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}
