package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/promptrelay/promptrelay/core"
)

// FileStore persists one JSON document per exchange in a context
// directory, named <timestamp>_<agent>_<id>.json. Unreadable files are
// skipped on recall rather than failing the whole read.
type FileStore struct {
	dir string
}

// NewFileStore creates the context directory if needed and returns a
// store writing into it.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("context directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create context directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the context directory path.
func (s *FileStore) Dir() string { return s.dir }

// Append writes the exchange as an indented JSON file.
func (s *FileStore) Append(ex core.Exchange) error {
	if ex.Timestamp.IsZero() {
		ex.Timestamp = time.Now().UTC()
	}
	data, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal exchange: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.json",
		ex.Timestamp.Format("20060102_150405"), safeName(ex.Agent), shortID(ex.ID))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write context file: %w", err)
	}
	return nil
}

// Recent loads all context files, orders them by exchange timestamp
// descending and returns up to n.
func (s *FileStore) Recent(n int) ([]core.Exchange, error) {
	if n <= 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read context directory: %w", err)
	}

	var exchanges []core.Exchange
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		var ex core.Exchange
		if err := json.Unmarshal(data, &ex); err != nil {
			continue
		}
		exchanges = append(exchanges, ex)
	}

	sort.Slice(exchanges, func(i, j int) bool {
		return exchanges[i].Timestamp.After(exchanges[j].Timestamp)
	})
	if n < len(exchanges) {
		exchanges = exchanges[:n]
	}
	return exchanges, nil
}

func safeName(s string) string {
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, s)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "noid"
	}
	return id
}
