package state

import (
	"encoding/json"
	"os"
)

// LockRecord is the informational content of the lock artifact. The file's
// existence alone is the lock.
type LockRecord struct {
	LockID    string `json:"lock_id"`
	Timestamp string `json:"timestamp"`
}

// LockPath returns the lock artifact location.
func (s *Store) LockPath() string {
	return s.lockPath
}

// AcquireLock atomically creates the lock artifact for owner.
//
// It returns false without error when the lock is already held. It never
// blocks or retries; callers that want to wait must poll.
func (s *Store) AcquireLock(owner string) (bool, error) {
	f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			s.logger.Warnf("State already locked")
			return false, nil
		}
		return false, err
	}

	record := LockRecord{LockID: owner, Timestamp: Timestamp()}
	if err := json.NewEncoder(f).Encode(record); err != nil {
		s.logger.Warnf("Failed to write lock record: %v", err)
	}
	if err := f.Close(); err != nil {
		s.logger.Warnf("Failed to close lock file: %v", err)
	}

	s.logger.Infof("State locked by %s", owner)
	return true, nil
}

// ReleaseLock removes the lock artifact. Releasing a lock that is not held
// returns false.
func (s *Store) ReleaseLock() (bool, error) {
	if err := os.Remove(s.lockPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	s.logger.Infof("State lock released")
	return true, nil
}

// LockInfo returns the current lock record, or nil when the lock is free.
// A lock file with unreadable content is reported with an empty record.
func (s *Store) LockInfo() (*LockRecord, error) {
	content, err := os.ReadFile(s.lockPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	record := &LockRecord{}
	if err := json.Unmarshal(content, record); err != nil {
		return &LockRecord{}, nil
	}
	return record, nil
}
