// state/state.go
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// TaskState is the persistable ratchet state of one protection task. Zero
// values mean "not set"; StageIndex uses -1 for "no stage applied yet".
type TaskState struct {
	LastAppliedStop float64 `json:"last_applied_stop"`
	Armed           bool    `json:"armed"`
	StageIndex      int     `json:"stage_index"`
	BestPrice       float64 `json:"best_price"`
}

// Store defines the persistence capabilities the task manager needs. The
// engine runs identically with a nil store; persistence only ensures a
// restart does not loosen protection already applied.
type Store interface {
	// Get returns the saved state for a (position, task) pair.
	Get(positionID, taskName string) (TaskState, bool)
	// Put saves the state for a (position, task) pair.
	Put(positionID, taskName string, st TaskState) error
	// Forget drops every saved state for a position (closed or filtered out).
	Forget(positionID string) error
}

// snapshot is the top-level structure persisted to the state file.
type snapshot struct {
	Tasks map[string]map[string]TaskState `json:"tasks"` // positionID -> taskName -> state
}

// FileStore is the concrete file implementation of Store. Writes are atomic
// (temp file plus rename) so a crash mid-save never corrupts the snapshot.
type FileStore struct {
	mu       sync.RWMutex
	filePath string
	snap     snapshot
}

// NewFileStore loads an existing snapshot or starts fresh when the file does
// not exist yet.
func NewFileStore(filePath string) (*FileStore, error) {
	fs := &FileStore{
		filePath: filePath,
		snap:     snapshot{Tasks: make(map[string]map[string]TaskState)},
	}

	if err := fs.load(); err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("failed to load task state: %w", err)
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil // empty file is a valid fresh state
	}
	if err := json.Unmarshal(data, &fs.snap); err != nil {
		return err
	}
	if fs.snap.Tasks == nil {
		fs.snap.Tasks = make(map[string]map[string]TaskState)
	}
	return nil
}

// save writes the snapshot atomically while the caller holds the lock.
func (fs *FileStore) save() error {
	data, err := json.MarshalIndent(&fs.snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task state: %w", err)
	}
	tmp := fs.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary state file: %w", err)
	}
	return os.Rename(tmp, fs.filePath)
}

func (fs *FileStore) Get(positionID, taskName string) (TaskState, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	byTask, ok := fs.snap.Tasks[positionID]
	if !ok {
		return TaskState{}, false
	}
	st, ok := byTask[taskName]
	return st, ok
}

func (fs *FileStore) Put(positionID, taskName string, st TaskState) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	byTask, ok := fs.snap.Tasks[positionID]
	if !ok {
		byTask = make(map[string]TaskState)
		fs.snap.Tasks[positionID] = byTask
	}
	byTask[taskName] = st
	return fs.save()
}

func (fs *FileStore) Forget(positionID string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.snap.Tasks[positionID]; !ok {
		return nil
	}
	delete(fs.snap.Tasks, positionID)
	return fs.save()
}
