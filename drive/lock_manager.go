package drive

import (
	"sync"
)

// operationType defines whether an operation is read or write, so the
// lockManager can take a shared lock for reads and an exclusive lock for
// writes.
type operationType int

const (
	// readOperation indicates an operation that only reads data.
	// Multiple read operations can proceed concurrently.
	readOperation operationType = iota

	// writeOperation indicates an operation that modifies data.
	// Write operations are exclusive.
	writeOperation
)

// lockManager centralizes lock handling for the store. Every store
// operation runs through execute with its operation type, which prevents
// lock/unlock/relock mistakes from spreading across the implementation.
type lockManager struct {
	mu *sync.RWMutex
}

func newLockManager() *lockManager {
	return &lockManager{mu: &sync.RWMutex{}}
}

// execute runs fn under the lock appropriate for the operation type.
func (lm *lockManager) execute(op operationType, fn func() error) error {
	if op == readOperation {
		lm.mu.RLock()
		defer lm.mu.RUnlock()
	} else {
		lm.mu.Lock()
		defer lm.mu.Unlock()
	}
	return fn()
}
