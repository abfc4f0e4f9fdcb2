package catalog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"offerbot/pkg/errors"
)

// persistedCatalog is the canonical on-disk object shape. The legacy
// "prioritarios" key is read but never written back.
type persistedCatalog struct {
	Priority       []Offer `json:"prioridade"`
	General        []Offer `json:"geral"`
	LegacyPriority []Offer `json:"prioritarios,omitempty"`
}

// FileStore reads and writes the catalog JSON file. The file is reloaded
// fresh at the start of every dispatch cycle so external edits between
// cycles are picked up.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the given catalog path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load parses the persisted catalog. Three shapes are accepted: a bare offer
// list (all general), the canonical {prioridade, geral} object, and the same
// object carrying the deprecated "prioritarios" list, which is merged into
// the priority pool and marks the catalog dirty. Any parse failure yields an
// empty catalog together with the error; the caller logs and proceeds.
func (s *FileStore) Load() (Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Catalog{}, nil
		}
		return Catalog{}, errors.NewParse("catalog", "failed to read catalog file", err)
	}

	cat, err := decode(data)
	if err != nil {
		return Catalog{}, errors.NewParse("catalog", "malformed catalog file", err)
	}
	return cat, nil
}

func decode(data []byte) (Catalog, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Catalog{}, nil
	}

	// Bare list: everything is a general offer
	if trimmed[0] == '[' {
		var general []Offer
		if err := json.Unmarshal(trimmed, &general); err != nil {
			return Catalog{}, err
		}
		return Catalog{General: general}, nil
	}

	var p persistedCatalog
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return Catalog{}, err
	}

	cat := Catalog{Priority: p.Priority, General: p.General}
	if len(p.LegacyPriority) > 0 {
		cat.Priority = append(cat.Priority, p.LegacyPriority...)
		cat.Dirty = true
	}
	return cat, nil
}

// Save serializes the normalized {prioridade, geral} shape atomically
// (temp file plus rename). Pools marshal as empty lists, never null.
func (s *FileStore) Save(cat Catalog) error {
	out := persistedCatalog{
		Priority: cat.Priority,
		General:  cat.General,
	}
	if out.Priority == nil {
		out.Priority = []Offer{}
	}
	if out.General == nil {
		out.General = []Offer{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.NewParse("catalog", "failed to marshal catalog", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.NewParse("catalog", "failed to create catalog directory", err)
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.NewParse("catalog", "failed to write catalog file", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return errors.NewParse("catalog", "failed to replace catalog file", err)
	}
	return nil
}
