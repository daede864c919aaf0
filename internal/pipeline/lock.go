package pipeline

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another run holds the renderer directory.
var ErrLocked = errors.New("another proxymill run is already using the renderer directory")

type runLock struct {
	path string
	lock *flock.Flock
}

func acquireLock(path string) (*runLock, error) {
	l := &runLock{path: path, lock: flock.New(path)}
	ok, err := l.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, path)
	}
	return l, nil
}

func (l *runLock) release() error {
	if l == nil {
		return nil
	}
	return l.lock.Unlock()
}
