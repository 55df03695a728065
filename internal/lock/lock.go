// Package lock serializes writers of local state files with advisory file
// locks. A lock lives in "<path>.lock"; its holder is described in
// "<path>.lock.info".
package lock

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/rileyhilliard/lsview/internal/errors"
)

// retryDelay is how often a waiting Acquire retries the lock.
var retryDelay = 50 * time.Millisecond

// Lock is an acquired lock.
type Lock struct {
	Path string
	Info *LockInfo
	fl   *flock.Flock
}

func lockPath(path string) string { return path + ".lock" }
func infoPath(path string) string { return path + ".lock.info" }

// Acquire takes the exclusive lock guarding path, waiting up to timeout.
// A non-positive timeout waits until ctx is done.
func Acquire(ctx context.Context, path string, timeout time.Duration, purpose string) (*Lock, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fl := flock.New(lockPath(path))
	ok, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil && ctx.Err() == nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Failed to lock %s", path),
			"Check permissions of the options directory")
	}
	if !ok {
		return nil, errors.New(errors.ErrStore,
			fmt.Sprintf("Timed out waiting for lock on %s after %s", path, timeout),
			fmt.Sprintf("Lock held by: %s", Holder(path)))
	}
	return held(path, fl, purpose), nil
}

// TryAcquire takes the lock without waiting. It returns ErrLocked when the
// lock is held elsewhere.
func TryAcquire(path, purpose string) (*Lock, error) {
	fl := flock.New(lockPath(path))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Failed to lock %s", path),
			"Check permissions of the options directory")
	}
	if !ok {
		return nil, ErrLocked
	}
	return held(path, fl, purpose), nil
}

func held(path string, fl *flock.Flock, purpose string) *Lock {
	info := NewLockInfo(purpose)
	if data, err := info.Marshal(); err == nil {
		// The info file only improves error messages.
		_ = os.WriteFile(infoPath(path), data, 0o600)
	}
	return &Lock{Path: path, Info: info, fl: fl}
}

// Release gives the lock up. Releasing a nil or released lock is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	_ = os.Remove(infoPath(l.Path))
	err := l.fl.Unlock()
	l.fl = nil
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Failed to release lock on %s", l.Path), "")
	}
	return nil
}

// Holder describes who holds the lock guarding path, if known.
func Holder(path string) string {
	data, err := os.ReadFile(infoPath(path))
	if err != nil {
		return "unknown"
	}
	info, err := ParseLockInfo(data)
	if err != nil {
		return strings.TrimSpace(string(data))
	}
	return info.String()
}
