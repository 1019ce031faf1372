// Package lockfile guards a destination directory against concurrent backup
// passes. The lock is a JSON file created exclusively; a crashed process
// leaves it behind, so locks older than a stale timeout are taken over.
package lockfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pixelgardenlabs.io/pgl-sync/pkg/plog"
	"pixelgardenlabs.io/pgl-sync/pkg/util"
)

// LockFileName is the name of the lock file created in the destination
// directory. The '~' prefix marks it as temporary.
const LockFileName = ".~pgl-sync.lock"

// staleTimeout is how old a lock may grow before another process may take it
// over. A var so tests can shorten it.
var staleTimeout = 15 * time.Minute

// LockContent defines the structure of the data written to the lock file.
type LockContent struct {
	PID        int       `json:"pid"`
	Hostname   string    `json:"hostname"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

// ErrLockActive is returned when another process holds a fresh lock.
type ErrLockActive struct {
	PID      int
	Hostname string
	Age      time.Duration
}

func (e *ErrLockActive) Error() string {
	return fmt.Sprintf("destination is locked by PID %d on host '%s', acquired %s ago", e.PID, e.Hostname, e.Age.Truncate(time.Second))
}

// Lock represents a held lock file.
type Lock struct {
	path string
	held bool
}

// Acquire creates the lock file in dirPath. It returns *ErrLockActive when
// another process holds a fresh lock. A stale or corrupt lock file is
// removed and acquisition is retried once.
func Acquire(dirPath string) (*Lock, error) {
	path := filepath.Join(dirPath, LockFileName)

	for attempt := 0; attempt < 2; attempt++ {
		lock, err := tryCreate(path)
		if err == nil {
			return lock, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file %s: %w", path, err)
		}

		content, readErr := readContent(path)
		if readErr == nil {
			age := time.Since(content.AcquiredAt)
			if age < staleTimeout {
				return nil, &ErrLockActive{PID: content.PID, Hostname: content.Hostname, Age: age}
			}
			plog.Warn("Taking over stale lock", "path", path, "age", age.Truncate(time.Second))
		} else {
			plog.Warn("Removing unreadable lock file", "path", path, "error", readErr)
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lock file %s: %w", path, err)
		}
	}
	// Two failed attempts means another process keeps winning the race.
	return nil, fmt.Errorf("failed to acquire lock in %s", dirPath)
}

// Release removes the lock file. Releasing twice is a no-op.
func (l *Lock) Release() {
	if !l.held {
		return
	}
	l.held = false
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		plog.Warn("Failed to remove lock file", "path", l.path, "error", err)
	}
}

func tryCreate(path string) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, util.UserWritableFilePerms)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	content := LockContent{
		PID:        os.Getpid(),
		Hostname:   hostname,
		AcquiredAt: time.Now().UTC(),
	}
	encodeErr := json.NewEncoder(file).Encode(content)
	closeErr := file.Close()
	if encodeErr != nil || closeErr != nil {
		os.Remove(path)
		if encodeErr != nil {
			return nil, fmt.Errorf("failed to write lock content: %w", encodeErr)
		}
		return nil, fmt.Errorf("failed to close lock file: %w", closeErr)
	}
	return &Lock{path: path, held: true}, nil
}

func readContent(path string) (LockContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LockContent{}, err
	}
	var content LockContent
	if err := json.Unmarshal(data, &content); err != nil {
		return LockContent{}, fmt.Errorf("lock file is corrupt: %w", err)
	}
	return content, nil
}
