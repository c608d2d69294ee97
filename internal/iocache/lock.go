package iocache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/huangsam/peerrank/schema"
)

// lockRetryDelay is how often a blocked locker retries.
const lockRetryDelay = 100 * time.Millisecond

// ErrCategoryLocked is returned when another process holds the category lock past the deadline.
var ErrCategoryLocked = errors.New("category is locked by another run")

// CategoryLock is an exclusive, cross-process lock on one category's history.
type CategoryLock struct {
	category schema.Category
	lock     *flock.Flock
}

// LockPath returns the lock file path of a category.
func LockPath(lockDir string, category schema.Category) string {
	return filepath.Join(lockDir, fmt.Sprintf("peerrank-%s.lock", category))
}

// LockCategory blocks until it holds the category lock or ctx is done.
func LockCategory(ctx context.Context, lockDir string, category schema.Category) (*CategoryLock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory %s: %w", lockDir, err)
	}

	path := LockPath(lockDir, category)
	fl := flock.New(path)
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s (%s)", ErrCategoryLocked, category, path)
	}
	return &CategoryLock{category: category, lock: fl}, nil
}

// Category returns the locked category.
func (l *CategoryLock) Category() schema.Category {
	return l.category
}

// Unlock releases the lock. The lock file is left in place for the next run.
func (l *CategoryLock) Unlock() error {
	return l.lock.Unlock()
}
