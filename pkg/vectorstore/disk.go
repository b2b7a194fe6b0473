package vectorstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrIndexNotFound is returned when a named index does not exist for the
// requested partition.
var ErrIndexNotFound = errors.New("vector index not found")

const indexFileName = "index.json"

// DiskStore persists one Index per (partition, name) pair as
// <root>/<partition>/<name>/index.json. Callers are responsible for passing
// filesystem-safe partition and name values (utils.SafeKey).
type DiskStore struct {
	Root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{Root: root}
}

func (s *DiskStore) dir(partition, name string) string {
	return filepath.Join(s.Root, partition, name)
}

func (s *DiskStore) Exists(partition, name string) bool {
	_, err := os.Stat(filepath.Join(s.dir(partition, name), indexFileName))
	return err == nil
}

func (s *DiskStore) Save(partition, name string, ix *Index) error {
	dir := s.dir(partition, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	data, err := json.Marshal(ix)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	// Write to a temp file first so a crashed write never leaves a truncated
	// index behind.
	tmp := filepath.Join(dir, indexFileName+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return os.Rename(tmp, filepath.Join(dir, indexFileName))
}

func (s *DiskStore) Load(partition, name string) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(s.dir(partition, name), indexFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrIndexNotFound)
		}
		return nil, fmt.Errorf("read index: %w", err)
	}

	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("unmarshal index: %w", err)
	}
	return &ix, nil
}
