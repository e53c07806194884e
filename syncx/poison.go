package syncx

import (
	"errors"
	"fmt"
	"sync"
)

// ErrPriorHolderFailed is returned by a poisoned lock. A previous holder
// panicked inside its critical section, so the guarded value may be
// half-updated.
var ErrPriorHolderFailed = errors.New("syncx: prior lock holder panicked")

// PoisonError carries the panic value that poisoned a lock.
type PoisonError struct {
	Value interface{}
}

func (e *PoisonError) Error() string {
	return fmt.Sprintf("%v: %v", ErrPriorHolderFailed, e.Value)
}

func (e *PoisonError) Is(target error) bool {
	return target == ErrPriorHolderFailed
}

// Mutex guards a value of type T. Access goes through Do, which marks the
// mutex poisoned if fn panics; the panic is then re-raised to the caller.
// Later calls to Do return a *PoisonError without running fn.
type Mutex[T any] struct {
	mu       sync.Mutex
	value    T
	poisoned *PoisonError
}

// NewMutex returns a mutex guarding v.
func NewMutex[T any](v T) *Mutex[T] {
	return &Mutex[T]{value: v}
}

// Do runs fn with exclusive access to the guarded value.
func (m *Mutex[T]) Do(fn func(v *T)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poisoned != nil {
		return m.poisoned
	}
	defer poisonOnPanic(&m.poisoned)

	fn(&m.value)
	return nil
}

// Poisoned reports whether a holder has panicked.
func (m *Mutex[T]) Poisoned() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.poisoned != nil
}

// Recover clears the poison flag after fix has repaired the value.
// It returns the value that poisoned the lock, or nil if it was healthy.
func (m *Mutex[T]) Recover(fix func(v *T)) interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poisoned == nil {
		return nil
	}
	if fix != nil {
		fix(&m.value)
	}
	cause := m.poisoned.Value
	m.poisoned = nil
	return cause
}

// RWMutex is the reader/writer counterpart of Mutex. A panic under either
// the read or the write lock poisons it.
type RWMutex[T any] struct {
	mu       sync.RWMutex
	value    T
	poisonMu sync.Mutex
	poisoned *PoisonError
}

// NewRWMutex returns a reader/writer mutex guarding v.
func NewRWMutex[T any](v T) *RWMutex[T] {
	return &RWMutex[T]{value: v}
}

// Read runs fn under the shared lock. fn must not modify the value.
func (m *RWMutex[T]) Read(fn func(v *T)) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.check(); err != nil {
		return err
	}
	defer m.poisonOnPanic()

	fn(&m.value)
	return nil
}

// Write runs fn under the exclusive lock.
func (m *RWMutex[T]) Write(fn func(v *T)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(); err != nil {
		return err
	}
	defer m.poisonOnPanic()

	fn(&m.value)
	return nil
}

// Poisoned reports whether a holder has panicked.
func (m *RWMutex[T]) Poisoned() bool {
	return m.check() != nil
}

// Recover clears the poison flag after fix has repaired the value.
func (m *RWMutex[T]) Recover(fix func(v *T)) interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.poisonMu.Lock()
	defer m.poisonMu.Unlock()
	if m.poisoned == nil {
		return nil
	}
	if fix != nil {
		fix(&m.value)
	}
	cause := m.poisoned.Value
	m.poisoned = nil
	return cause
}

func (m *RWMutex[T]) check() error {
	m.poisonMu.Lock()
	defer m.poisonMu.Unlock()
	if m.poisoned != nil {
		return m.poisoned
	}
	return nil
}

// poisonOnPanic must be deferred directly so recover sees the panic.
func (m *RWMutex[T]) poisonOnPanic() {
	if r := recover(); r != nil {
		m.poisonMu.Lock()
		if m.poisoned == nil {
			m.poisoned = &PoisonError{Value: r}
		}
		m.poisonMu.Unlock()
		panic(r)
	}
}

// poisonOnPanic must be deferred directly so recover sees the panic.
func poisonOnPanic(slot **PoisonError) {
	if r := recover(); r != nil {
		*slot = &PoisonError{Value: r}
		panic(r)
	}
}
