// Package datastore is a small JSON-file backed key/value store. Values are
// held in memory and flushed to disk periodically when they changed, and on
// Close.
package datastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrClosed = errors.New("datastore is closed")

// Options configures a DataStore.
type Options struct {
	Path             string
	AutoSaveInterval time.Duration
}

func DefaultOptions(path string) Options {
	return Options{
		Path:             path,
		AutoSaveInterval: 10 * time.Second,
	}
}

type DataStore struct {
	path string

	mu           sync.RWMutex
	data         map[string]json.RawMessage
	dirty        bool
	lastChecksum string
	closed       bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New opens the store at path with default options.
func New(path string) (*DataStore, error) {
	return Open(DefaultOptions(path))
}

// Open loads the file named in opts, creating an empty one when missing,
// and starts the autosave loop when AutoSaveInterval is positive.
func Open(opts Options) (*DataStore, error) {
	if opts.Path == "" {
		return nil, errors.New("datastore: path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("datastore: create directory: %w", err)
	}

	ds := &DataStore{
		path: opts.Path,
		data: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(opts.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := writeFileAtomic(opts.Path, []byte("{}")); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("datastore: read %s: %w", opts.Path, err)
	default:
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &ds.data); err != nil {
				return nil, fmt.Errorf("datastore: invalid JSON in %s: %w", opts.Path, err)
			}
		}
		ds.lastChecksum = checksum(raw)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds.cancel = cancel
	if opts.AutoSaveInterval > 0 {
		ds.wg.Add(1)
		go ds.autoSave(ctx, opts.AutoSaveInterval)
	}
	return ds, nil
}

// Add marshals value and stores it under key.
func (ds *DataStore) Add(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("datastore: marshal %q: %w", key, err)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}
	ds.data[key] = b
	ds.dirty = true
	return nil
}

// Get decodes the value under key into out. It reports whether the key
// existed.
func (ds *DataStore) Get(key string, out any) (bool, error) {
	ds.mu.RLock()
	b, ok := ds.data[key]
	closed := ds.closed
	ds.mu.RUnlock()

	if closed {
		return false, ErrClosed
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return true, fmt.Errorf("datastore: decode %q: %w", key, err)
	}
	return true, nil
}

func (ds *DataStore) Delete(key string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if _, ok := ds.data[key]; ok && !ds.closed {
		delete(ds.data, key)
		ds.dirty = true
	}
}

// Keys returns every key with the given prefix, sorted.
func (ds *DataStore) Keys(prefix string) []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	var keys []string
	for k := range ds.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// SaveToFile flushes the store immediately.
func (ds *DataStore) SaveToFile() error {
	ds.mu.RLock()
	closed := ds.closed
	ds.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return ds.save()
}

// Close stops the autosave loop and writes a final snapshot.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return nil
	}
	ds.closed = true
	ds.mu.Unlock()

	ds.cancel()
	ds.wg.Wait()
	return ds.save()
}

func (ds *DataStore) save() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	b, err := json.MarshalIndent(ds.data, "", "  ")
	if err != nil {
		return fmt.Errorf("datastore: marshal: %w", err)
	}
	sum := checksum(b)
	if sum == ds.lastChecksum {
		ds.dirty = false
		return nil
	}
	if err := writeFileAtomic(ds.path, b); err != nil {
		return err
	}
	ds.lastChecksum = sum
	ds.dirty = false
	return nil
}

func (ds *DataStore) autoSave(ctx context.Context, every time.Duration) {
	defer ds.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ds.mu.RLock()
			dirty := ds.dirty
			ds.mu.RUnlock()
			if !dirty {
				continue
			}
			if err := ds.save(); err != nil {
				log.Error().Err(err).Str("path", ds.path).Msg("datastore autosave failed")
			}
		}
	}
}

// writeFileAtomic writes to a temp file in the same directory, syncs it and
// renames it over path.
func writeFileAtomic(path string, b []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("datastore: open temp file: %w", err)
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("datastore: write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("datastore: sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("datastore: close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("datastore: rename temp file: %w", err)
	}
	return nil
}

func checksum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
