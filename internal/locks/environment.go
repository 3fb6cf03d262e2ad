package locks

import (
	"context"
	"sync"

	"github.com/im7mortal/kmutex"
	"github.com/juju/errors"

	"fleetgear/pkg/logging"
)

// Releaser releases a held environment lock. Release is safe to call more
// than once.
type Releaser interface {
	Release()
}

// EnvironmentLocker serializes orchestrations per environment name. Locks
// for different environments are independent.
//
// Acquiring with force skips the wait and does not take the lock. This is an
// operator override: a forced run may overlap with the current holder and
// with runs that start while it is in progress. Nothing corrects that.
type EnvironmentLocker struct {
	km *kmutex.Kmutex

	mu      sync.Mutex
	holders map[string]string
}

// NewEnvironmentLocker creates a locker with no held locks.
func NewEnvironmentLocker() *EnvironmentLocker {
	return &EnvironmentLocker{
		km:      kmutex.New(),
		holders: make(map[string]string),
	}
}

// Acquire blocks until no other holder owns environment, then returns a
// Releaser. holder is recorded for diagnostics (usually a job id).
//
// If ctx is done before the lock is obtained Acquire returns ctx's error;
// a lock obtained after that point is released straight away.
func (l *EnvironmentLocker) Acquire(ctx context.Context, environment, holder string, force bool) (Releaser, error) {
	if force {
		if current, held := l.Holder(environment); held {
			logging.Warn("EnvLock", "Forcing lock on environment %s held by %s (requested by %s)", environment, current, holder)
		} else {
			logging.Warn("EnvLock", "Forcing lock on environment %s (requested by %s)", environment, holder)
		}
		return releaseFunc(func() {}), nil
	}

	acquired := make(chan struct{})
	go func() {
		l.km.Lock(environment)
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-ctx.Done():
		// The goroutine still owns a pending Lock call; hand the lock
		// straight back once it is granted.
		go func() {
			<-acquired
			l.km.Unlock(environment)
		}()
		return nil, errors.Annotatef(ctx.Err(), "waiting for lock on environment %s", environment)
	}

	l.mu.Lock()
	l.holders[environment] = holder
	l.mu.Unlock()

	logging.Debug("EnvLock", "Environment %s locked by %s", environment, holder)

	var once sync.Once
	return releaseFunc(func() {
		once.Do(func() {
			l.mu.Lock()
			if l.holders[environment] == holder {
				delete(l.holders, environment)
			}
			l.mu.Unlock()

			l.km.Unlock(environment)
			logging.Debug("EnvLock", "Environment %s released by %s", environment, holder)
		})
	}), nil
}

// WithLock runs fn while holding the lock for environment. The lock is
// released on every exit path, including a panic in fn.
func (l *EnvironmentLocker) WithLock(ctx context.Context, environment, holder string, force bool, fn func() error) error {
	r, err := l.Acquire(ctx, environment, holder, force)
	if err != nil {
		return err
	}
	defer r.Release()

	return fn()
}

// Holder returns the holder of environment's lock, if any.
func (l *EnvironmentLocker) Holder(environment string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.holders[environment]
	return h, ok
}

type releaseFunc func()

func (f releaseFunc) Release() {
	f()
}
