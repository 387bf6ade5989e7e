package db

import (
	"errors"
	"fmt"
	"os"
)

// ErrLocked is returned by New while another process holds the database.
var ErrLocked = errors.New("database is in use by another coinflip process")

// acquireLock takes an exclusive, non-blocking lock on path+".lock". The
// state records are loaded once and then owned by the process, so only one
// process may have them open at a time.
func acquireLock(path string) (*os.File, error) {
	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := lockFile(f); err != nil {
		_ = f.Close()
		if errors.Is(err, ErrLocked) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to acquire database lock: %w", err)
	}
	return f, nil
}

func releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}
	return errors.Join(unlockFile(f), f.Close())
}
