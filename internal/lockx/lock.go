// Package lockx implements an exclusive advisory lock over a named file,
// used to serialize read-modify-write sequences against the same artifact
// from any process or goroutine.
package lockx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/dmitrijs2005/journalkeeper/internal/common"
)

// LockSuffix is appended to an artifact path to form its lock resource.
const LockSuffix = ".lock"

// retryInterval is how often Acquire re-attempts a contended lock.
const retryInterval = 50 * time.Millisecond

// Guard represents held ownership of a lock file. Release must be called on
// every exit path; deferring it right after Acquire is the expected pattern.
type Guard struct {
	f        *os.File
	released bool
}

// PathFor returns the lock resource bound to the given artifact path.
func PathFor(artifactPath string) string {
	return artifactPath + LockSuffix
}

// Acquire obtains an exclusive flock on path, creating the lock file if
// needed. Each call opens its own descriptor, so goroutines within one
// process exclude each other the same way separate processes do.
//
// Contended locks are retried with a non-blocking flock until ctx is done,
// at which point Acquire fails with common.ErrLockUnavailable wrapping the
// context error. Nothing has been mutated at that point.
//
// After acquisition the lock file is stamped with an owner token and pid,
// purely as a diagnostic aid for whoever finds a contended lock.
func Acquire(ctx context.Context, path string) (*Guard, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EWOULDBLOCK) {
			_ = f.Close()
			return nil, fmt.Errorf("flock %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, fmt.Errorf("%w: %s: %w", common.ErrLockUnavailable, path, ctx.Err())
		case <-time.After(retryInterval):
		}
	}

	stampOwner(f)
	return &Guard{f: f}, nil
}

// Release drops the lock. It is idempotent and never fails; errors on the
// way out are ignored because the descriptor close releases the flock
// regardless.
func (g *Guard) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	_ = unix.Flock(int(g.f.Fd()), unix.LOCK_UN)
	_ = g.f.Close()
}

// stampOwner best-effort records who holds the lock. The lock file itself is
// never removed, so the stamp is only meaningful while the flock is held.
func stampOwner(f *os.File) {
	_ = f.Truncate(0)
	_, _ = f.Seek(0, 0)
	_, _ = fmt.Fprintf(f, "owner=%s pid=%d\n", uuid.New(), os.Getpid())
}
