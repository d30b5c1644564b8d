package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/constants"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/logging"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps every record in memory and rewrites the whole JSON file
// on each mutation. The file is a pretty-printed array of records.
//
// An append-only log with periodic compaction would scale better for very
// large sheets; the full rewrite keeps the file human-editable.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	records map[string]*Record
	logger  *zerolog.Logger
	now     func() utc.Time
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger sets the logger used for load warnings.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *FileStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() utc.Time) Option {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}

// Open loads the store at path. A missing or unparseable file yields an
// empty store; only an unreadable file is an error.
func Open(path string, opts ...Option) (*FileStore, error) {
	if path == "" {
		path = constants.DefaultStorePath
	}
	s := &FileStore{
		path:    path,
		records: make(map[string]*Record),
		logger:  logging.Default(),
		now:     utc.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug().Str("path", s.path).Msg("No identity store yet, starting empty")
			return nil
		}
		return errors.WrapIO("read", s.path, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Identity store is corrupt, starting empty")
		return nil
	}

	for i := range records {
		r := records[i]
		if r.RowID == "" {
			continue
		}
		s.records[r.RowID] = &r
	}
	s.logger.Debug().Str("path", s.path).Int("records", len(s.records)).Msg("Loaded identity store")
	return nil
}

// Get implements Store.
func (s *FileStore) Get(rowID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[rowID]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Set implements Store.
func (s *FileStore) Set(rowID string, issueNumber int, title string) error {
	if rowID == "" {
		return errors.NewValidationError("rowId", rowID, "row id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	prev, existed := s.records[rowID]
	next := &Record{
		RowID:       rowID,
		IssueNumber: issueNumber,
		Title:       title,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if existed {
		next.CreatedAt = prev.CreatedAt
	}
	s.records[rowID] = next

	if err := s.flush(); err != nil {
		if existed {
			s.records[rowID] = prev
		} else {
			delete(s.records, rowID)
		}
		return err
	}
	return nil
}

// Delete implements Store.
func (s *FileStore) Delete(rowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.records[rowID]
	if !ok {
		return nil
	}
	delete(s.records, rowID)
	if err := s.flush(); err != nil {
		s.records[rowID] = prev
		return err
	}
	return nil
}

// Clear implements Store. The file is rewritten as an empty array.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.records
	s.records = make(map[string]*Record)
	if err := s.flush(); err != nil {
		s.records = prev
		return err
	}
	return nil
}

// List implements Store.
func (s *FileStore) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted()
}

// Len implements Store.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *FileStore) sorted() []Record {
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RowID < out[j].RowID })
	return out
}

// flush writes the full store to a temp file in the same directory and
// renames it over the target. Callers hold s.mu.
func (s *FileStore) flush() error {
	records := s.sorted()
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.WrapParse("json", s.path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.WrapIO("write", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.WrapIO("sync", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.WrapIO("close", tmpName, err)
	}
	if err := os.Chmod(tmpName, constants.FilePermissions); err != nil {
		cleanup()
		return errors.WrapIO("chmod", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return errors.WrapIO("rename", s.path, err)
	}
	return nil
}
