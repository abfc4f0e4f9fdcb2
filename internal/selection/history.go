package selection

import (
	"encoding/json"
	"os"
	"path/filepath"

	"offerbot/pkg/errors"
	"offerbot/services/cache"
)

// History tracks the fingerprints of recently dispatched offers. It exists
// only to avoid near-term repetition; losing it costs nothing but a possible
// duplicate.
type History interface {
	// Contains reports whether a fingerprint was recently dispatched
	Contains(fp string) bool

	// Add records a fingerprint, evicting the oldest beyond the bound
	Add(fp string) error
}

// MemoryHistory keeps the bounded fingerprint list in process memory.
// A limit of 1 degenerates to a single last-sent marker.
type MemoryHistory struct {
	limit   int
	entries []string
}

// NewMemoryHistory creates an in-memory history with the given bound.
func NewMemoryHistory(limit int) *MemoryHistory {
	if limit < 1 {
		limit = 1
	}
	return &MemoryHistory{limit: limit}
}

// Contains reports whether fp is in the recent window.
func (h *MemoryHistory) Contains(fp string) bool {
	for _, e := range h.entries {
		if e == fp {
			return true
		}
	}
	return false
}

// Add appends fp and trims to the bound.
func (h *MemoryHistory) Add(fp string) error {
	h.entries = append(h.entries, fp)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	return nil
}

// FileHistory persists the bounded list as a JSON array so the
// anti-repetition window survives restarts.
type FileHistory struct {
	path string
	mem  *MemoryHistory
}

// NewFileHistory loads the persisted history from path. A missing or
// corrupt file starts an empty history; the window is best-effort.
func NewFileHistory(path string, limit int) *FileHistory {
	h := &FileHistory{path: path, mem: NewMemoryHistory(limit)}

	data, err := os.ReadFile(path)
	if err != nil {
		return h
	}
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return h
	}
	if len(entries) > h.mem.limit {
		entries = entries[len(entries)-h.mem.limit:]
	}
	h.mem.entries = entries
	return h
}

// Contains reports whether fp is in the recent window.
func (h *FileHistory) Contains(fp string) bool {
	return h.mem.Contains(fp)
}

// Add records fp and writes the window back atomically.
func (h *FileHistory) Add(fp string) error {
	h.mem.Add(fp)

	data, err := json.MarshalIndent(h.mem.entries, "", "  ")
	if err != nil {
		return errors.NewCache("history", "failed to marshal history", err)
	}

	if dir := filepath.Dir(h.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.NewCache("history", "failed to create history directory", err)
		}
	}

	tmpPath := h.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.NewCache("history", "failed to write history file", err)
	}
	if err := os.Rename(tmpPath, h.path); err != nil {
		os.Remove(tmpPath)
		return errors.NewCache("history", "failed to replace history file", err)
	}
	return nil
}

// CacheHistory keeps the bounded list in a shared cache service so several
// bot instances can share one anti-repetition window.
type CacheHistory struct {
	cache cache.CacheService
	key   string
	limit int
}

// NewCacheHistory creates a cache-backed history under the given key.
func NewCacheHistory(svc cache.CacheService, key string, limit int) *CacheHistory {
	if limit < 1 {
		limit = 1
	}
	return &CacheHistory{cache: svc, key: key, limit: limit}
}

func (h *CacheHistory) load() []string {
	data, err := h.cache.Get(h.key)
	if err != nil {
		return nil
	}
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

// Contains reports whether fp is in the recent window. A cache miss or
// unreachable cache reads as an empty window.
func (h *CacheHistory) Contains(fp string) bool {
	for _, e := range h.load() {
		if e == fp {
			return true
		}
	}
	return false
}

// Add records fp and stores the trimmed window back without expiration.
func (h *CacheHistory) Add(fp string) error {
	entries := append(h.load(), fp)
	if len(entries) > h.limit {
		entries = entries[len(entries)-h.limit:]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return errors.NewCache("history", "failed to marshal history", err)
	}
	if err := h.cache.Set(h.key, data, 0); err != nil {
		return errors.NewCache("history", "failed to store history", err)
	}
	return nil
}
