// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/zeebo/xxh3"
)

// Store is a file-backed record store keyed by fingerprint.
// A Store is safe for concurrent use.
type Store struct {
	path   string
	lock   *storeLock
	mu     sync.Mutex
	closed bool
	now    func() time.Time
}

// Open opens or creates the store at path. The file itself is created lazily
// on the first write; the lock file is created immediately.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	lock, err := openLock(path)
	if err != nil {
		return nil, err
	}

	// A leftover temp file means a writer died before its rename; the store
	// file itself is still the last complete write.
	if err := lock.hold(lockExclusive, func() error {
		_ = os.Remove(path + ".tmp")
		return nil
	}); err != nil {
		_ = lock.close()
		return nil, err
	}

	return &Store{path: path, lock: lock, now: time.Now}, nil
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the store's lock file. Subsequent operations fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.lock.close()
}

// Get returns a copy of the record for fingerprint, or ErrNotFound.
func (s *Store) Get(ctx context.Context, fingerprint string) (*Record, error) {
	var out *Record
	err := s.read(ctx, func(doc *document) error {
		rec, ok := doc.Records[fingerprint]
		if !ok {
			return fmt.Errorf("fingerprint %s: %w", fingerprint, ErrNotFound)
		}
		cp := *rec
		out = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Insert stores rec if no record exists for its fingerprint and returns the
// stored record. When a record already exists it is returned unchanged and
// rec is discarded, so Insert is safe to call repeatedly for one key.
func (s *Store) Insert(ctx context.Context, rec Record) (*Record, error) {
	if rec.Fingerprint == "" {
		return nil, fmt.Errorf("record fingerprint cannot be empty")
	}

	var out *Record
	err := s.write(ctx, func(doc *document) (bool, error) {
		if existing, ok := doc.Records[rec.Fingerprint]; ok {
			cp := *existing
			out = &cp
			return false, nil
		}

		now := s.now().UTC()
		stored := rec
		stored.CreatedAt = now
		stored.UpdatedAt = now
		doc.Records[rec.Fingerprint] = &stored

		cp := stored
		out = &cp
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateCursor writes the cursor fields of the record for fingerprint and
// counts one emission. It fails with ErrNotFound when no record exists and
// with ErrCursorRegression when c.LastLine is behind the stored cursor.
func (s *Store) UpdateCursor(ctx context.Context, fingerprint string, c Cursor) (*Record, error) {
	var out *Record
	err := s.write(ctx, func(doc *document) (bool, error) {
		rec, ok := doc.Records[fingerprint]
		if !ok {
			return false, fmt.Errorf("fingerprint %s: %w", fingerprint, ErrNotFound)
		}
		if c.LastLine < rec.LastLine {
			return false, fmt.Errorf("fingerprint %s at line %d, update to %d: %w",
				fingerprint, rec.LastLine, c.LastLine, ErrCursorRegression)
		}

		rec.LastLine = c.LastLine
		rec.DisplayLine = c.DisplayLine
		rec.Prefix = c.Prefix
		if c.PostID != "" {
			rec.LastPostID = c.PostID
		}
		if c.Source != "" {
			rec.Source = c.Source
		}
		rec.Emitted++
		rec.UpdatedAt = s.now().UTC()

		cp := *rec
		out = &cp
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns copies of all records ordered by creation time.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	var out []Record
	err := s.read(ctx, func(doc *document) error {
		out = make([]Record, 0, len(doc.Records))
		for _, rec := range doc.Records {
			out = append(out, *rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Fingerprint < out[j].Fingerprint
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// read runs fn against the current contents under a shared lock.
func (s *Store) read(ctx context.Context, fn func(*document) error) error {
	return s.withLock(ctx, lockShared, func() error {
		doc, err := s.load()
		if err != nil {
			return err
		}
		return fn(doc)
	})
}

// write runs fn under an exclusive lock and saves the document if fn reports a change.
func (s *Store) write(ctx context.Context, fn func(*document) (bool, error)) error {
	return s.withLock(ctx, lockExclusive, func() error {
		doc, err := s.load()
		if err != nil {
			return err
		}
		changed, err := fn(doc)
		if err != nil || !changed {
			return err
		}
		return s.save(doc)
	})
}

func (s *Store) withLock(ctx context.Context, mode lockMode, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.lock.hold(mode, fn)
}

// load reads and validates the store file. A missing file is an empty store.
func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{Version: CurrentVersion, Records: make(map[string]*Record)}, nil
		}
		return nil, fmt.Errorf("failed to read store file %s: %w", s.path, err)
	}

	var file fileDocument
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w (invalid JSON): %v", ErrCorrupt, err)
	}

	if file.Version != CurrentVersion {
		return nil, fmt.Errorf("store file version (%d) is incompatible with current version (%d)",
			file.Version, CurrentVersion)
	}

	// The checksum covers the records exactly as encoded, so decoding
	// (which replaces invalid UTF-8 with U+FFFD) cannot change it.
	var records bytes.Buffer
	if len(file.Records) > 0 {
		if err := json.Compact(&records, file.Records); err != nil {
			return nil, fmt.Errorf("%w (invalid records): %v", ErrCorrupt, err)
		}
	}
	if checksum(records.Bytes()) != file.Checksum {
		return nil, fmt.Errorf("%w (checksum mismatch)", ErrCorrupt)
	}

	doc := &document{Version: file.Version}
	if records.Len() > 0 {
		if err := json.Unmarshal(records.Bytes(), &doc.Records); err != nil {
			return nil, fmt.Errorf("%w (invalid records): %v", ErrCorrupt, err)
		}
	}
	if doc.Records == nil {
		doc.Records = make(map[string]*Record)
	}

	return doc, nil
}

// save atomically replaces the store file.
func (s *Store) save(doc *document) error {
	doc.Version = CurrentVersion

	records, err := json.Marshal(doc.Records)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	data, err := json.MarshalIndent(fileDocument{
		Version:  CurrentVersion,
		Checksum: checksum(records),
		Records:  records,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	tempFile := s.path + ".tmp"
	f, err := os.OpenFile(tempFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create temporary store file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to write temporary store file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to sync temporary store file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to close temporary store file: %w", err)
	}

	if err := os.Rename(tempFile, s.path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary store file: %w", err)
	}
	return nil
}

// fileDocument is the on-disk layout. Records stays raw so the checksum is
// taken over the bytes that were written.
type fileDocument struct {
	Version  int             `json:"version"`
	Checksum string          `json:"checksum"`
	Records  json.RawMessage `json:"records"`
}

// checksum hashes compact encoded records.
func checksum(records []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(records))
}
