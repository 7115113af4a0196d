// Package store persists agent state as a single JSON file with atomic
// writes and periodic autosave. The engines only ever see the typed records;
// the file layout is an implementation detail.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore is a thread-safe key→record JSON store.
type FileStore struct {
	mu           sync.RWMutex
	data         map[string]json.RawMessage
	file         string
	autoSave     time.Duration
	lastChecksum string
	done         chan struct{}
	wg           sync.WaitGroup
	closeOnce    sync.Once
}

// Open loads (or creates) the store at path and starts the autosave loop.
func Open(path string) (*FileStore, error) {
	return OpenWithInterval(path, 10*time.Second)
}

// OpenWithInterval is Open with a custom autosave interval; 0 disables
// autosave (tests).
func OpenWithInterval(path string, autoSave time.Duration) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir: %w", err)
	}

	s := &FileStore{
		data:     make(map[string]json.RawMessage),
		file:     path,
		autoSave: autoSave,
		done:     make(chan struct{}),
	}

	if b, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(b, &s.data); err != nil {
			return nil, fmt.Errorf("store: corrupt file %s: %w", path, err)
		}
		s.lastChecksum = checksum(b)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("store: read: %w", err)
	}

	if autoSave > 0 {
		s.wg.Add(1)
		go s.autoSaveLoop()
	}
	return s, nil
}

// Get unmarshals the record at key into v. Returns false when absent.
func (s *FileStore) Get(key string, v any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return true, nil
}

// Put stores v at key. The write hits disk on the next flush.
func (s *FileStore) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}

// Delete removes the record at key.
func (s *FileStore) Delete(key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

// Keys returns all stored keys.
func (s *FileStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// Flush writes the store to disk atomically if it changed since last flush.
func (s *FileStore) Flush() error {
	s.mu.RLock()
	b, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("store: marshal: %w", err)
	}

	sum := checksum(b)
	s.mu.Lock()
	unchanged := sum == s.lastChecksum
	s.mu.Unlock()
	if unchanged {
		return nil
	}

	tmp := s.file + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("store: write tmp: %w", err)
	}
	if err := os.Rename(tmp, s.file); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}

	// Only a write that reached disk counts as flushed; a failed attempt
	// must leave the data dirty for the next flush.
	s.mu.Lock()
	s.lastChecksum = sum
	s.mu.Unlock()
	return nil
}

// Close stops autosave and flushes once more.
func (s *FileStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		err = s.Flush()
	})
	return err
}

func (s *FileStore) autoSaveLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.autoSave)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = s.Flush()
		case <-s.done:
			return
		}
	}
}

func checksum(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
