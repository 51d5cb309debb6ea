// Package lock provides per-character locking so that progression updates for
// one character never interleave.
package lock

import (
	"context"
	"sync"
	"time"
)

// Locker runs fn while holding the lock for key.
// It returns ErrLockTimeout if the lock is not acquired within timeout.
type Locker interface {
	WithLockContext(ctx context.Context, key string, timeout time.Duration, fn func() error) error
}

// keyMutex is a one-slot channel used as a mutex so waiters can give up.
// refs counts holders and waiters; the entry is dropped when it reaches zero.
type keyMutex struct {
	ch   chan struct{}
	refs int
}

// CharacterLock provides in-process per-character locking.
type CharacterLock struct {
	mu    sync.Mutex
	locks map[string]*keyMutex
}

// NewCharacterLock creates a new CharacterLock instance.
func NewCharacterLock() *CharacterLock {
	return &CharacterLock{locks: make(map[string]*keyMutex)}
}

// ref retrieves or creates the mutex for key and registers interest in it.
func (cl *CharacterLock) ref(key string) *keyMutex {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	km, ok := cl.locks[key]
	if !ok {
		km = &keyMutex{ch: make(chan struct{}, 1)}
		cl.locks[key] = km
	}
	km.refs++
	return km
}

func (cl *CharacterLock) unref(key string, km *keyMutex) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	km.refs--
	if km.refs == 0 {
		delete(cl.locks, key)
	}
}

// Lock acquires the lock for a character, blocking until it is free.
func (cl *CharacterLock) Lock(key string) {
	km := cl.ref(key)
	km.ch <- struct{}{}
}

// Unlock releases the lock for a character.
// Unlocking a key that is not locked is a no-op.
func (cl *CharacterLock) Unlock(key string) {
	cl.mu.Lock()
	km, ok := cl.locks[key]
	cl.mu.Unlock()
	if !ok {
		return
	}

	select {
	case <-km.ch:
		cl.unref(key, km)
	default:
	}
}

// TryLock attempts to acquire the lock without blocking.
func (cl *CharacterLock) TryLock(key string) bool {
	km := cl.ref(key)
	select {
	case km.ch <- struct{}{}:
		return true
	default:
		cl.unref(key, km)
		return false
	}
}

// LockWithTimeout waits up to timeout for the lock.
// Returns ErrLockTimeout on timeout, or the context error if ctx ends first.
func (cl *CharacterLock) LockWithTimeout(ctx context.Context, key string, timeout time.Duration) error {
	km := cl.ref(key)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case km.ch <- struct{}{}:
		return nil
	case <-timer.C:
		cl.unref(key, km)
		return ErrLockTimeout
	case <-ctx.Done():
		cl.unref(key, km)
		return ctx.Err()
	}
}

// WithLock executes a function while holding the character's lock.
func (cl *CharacterLock) WithLock(key string, fn func() error) error {
	cl.Lock(key)
	defer cl.Unlock(key)
	return fn()
}

// WithLockContext executes a function while holding the character's lock,
// giving up after timeout.
func (cl *CharacterLock) WithLockContext(ctx context.Context, key string, timeout time.Duration, fn func() error) error {
	if err := cl.LockWithTimeout(ctx, key, timeout); err != nil {
		return err
	}
	defer cl.Unlock(key)
	return fn()
}

// IsLocked reports whether the character's lock is currently held.
// This is a point-in-time check.
func (cl *CharacterLock) IsLocked(key string) bool {
	cl.mu.Lock()
	km, ok := cl.locks[key]
	cl.mu.Unlock()
	return ok && len(km.ch) == 1
}

// size returns the number of keys with holders or waiters.
func (cl *CharacterLock) size() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.locks)
}
