package library

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

// ValidateSaneExecutionTime returns a func that must be called before deadlock.Opts.DeadlockTimeout
// elapses, otherwise go-deadlock reports the caller as stuck.
func ValidateSaneExecutionTime() func() {
	mu := deadlock.Mutex{}
	mu.Lock()
	go func() {
		mu.Lock()
		mu.Unlock()
	}()
	return func() {
		mu.Unlock()
	}
}

// SetDeadlockTimeout changes how long a lock may be held before go-deadlock complains.
func SetDeadlockTimeout(d time.Duration) {
	deadlock.Opts.DeadlockTimeout = d
}
