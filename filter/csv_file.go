package filter

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"

	"profit_guard_go/logs"
	"profit_guard_go/venue"
)

// ByCSVFile accepts only positions whose identifier appears in a CSV
// allow-list. The first column of each row is the position identifier;
// a header row named "id" or "ticket" is skipped.
type ByCSVFile struct {
	mu      sync.RWMutex
	path    string
	allowed map[string]bool
}

// NewByCSVFile loads the allow-list from the given CSV file.
func NewByCSVFile(path string) (*ByCSVFile, error) {
	f := &ByCSVFile{path: path, allowed: make(map[string]bool)}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Reload re-reads the allow-list from disk, replacing the previous set.
func (f *ByCSVFile) Reload() error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("failed to open allow-list %s: %w", f.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse allow-list %s: %w", f.path, err)
	}

	allowed := make(map[string]bool, len(records))
	for i, rec := range records {
		if len(rec) == 0 {
			continue
		}
		id := strings.TrimSpace(rec[0])
		if id == "" {
			continue
		}
		if i == 0 {
			lower := strings.ToLower(id)
			if lower == "id" || lower == "ticket" {
				continue
			}
		}
		allowed[id] = true
	}

	f.mu.Lock()
	f.allowed = allowed
	f.mu.Unlock()
	logs.Infof("[Filter] Loaded %d identifier(s) from allow-list %s", len(allowed), f.path)
	return nil
}

func (f *ByCSVFile) IsEligible(pos venue.Position) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.allowed[pos.ID]
}
