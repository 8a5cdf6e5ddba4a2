package ipdir

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/ivugurura/radio-landing/internal/geo"
	"github.com/ivugurura/radio-landing/internal/logging"
)

// Directory maps an IP address to the geolocation fetched the first time it
// was seen. Records are never updated or removed.
type Directory interface {
	Lookup(ctx context.Context, ip string) (geo.Record, bool, error)
	Append(ctx context.Context, rec geo.Record) error
}

var ErrNotConfigured = errors.New("ipdir: backend not configured")

// ErrCorrupt wraps a directory file that exists but does not parse.
var ErrCorrupt = errors.New("ipdir: corrupt data file")

// Store keeps the whole directory as one indented JSON array on disk and
// rewrites it on every append. Appends are serialized within the process;
// other processes writing the same file can still lose updates.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Lookup scans the file for ip. A missing file is a plain miss; an unreadable
// or corrupt file is a miss plus an error for the caller to log.
func (s *Store) Lookup(_ context.Context, ip string) (geo.Record, bool, error) {
	recs, err := s.read()
	if err != nil {
		return geo.Record{}, false, err
	}
	for _, r := range recs {
		if r.Query == ip {
			return r, true, nil
		}
	}
	return geo.Record{}, false, nil
}

// Append adds rec unless its IP is already present. If the existing file
// does not parse it is moved aside to <path>.corrupt and a new collection is
// started; any other read failure is returned and the file is left alone.
func (s *Store) Append(ctx context.Context, rec geo.Record) error {
	if rec.Query == "" {
		return errors.New("ipdir: record has no query ip")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	switch {
	case errors.Is(err, ErrCorrupt):
		logging.Ctx(ctx).Warn().Err(err).Str("path", s.path).Msg("ipdir: existing data does not parse, starting a new collection")
		if rerr := os.Rename(s.path, s.path+".corrupt"); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			return fmt.Errorf("ipdir: move aside %s: %w", s.path, rerr)
		}
		recs = nil
	case err != nil:
		return err
	}

	for _, r := range recs {
		if r.Query == rec.Query {
			return nil
		}
	}
	recs = append(recs, rec)
	return s.write(recs)
}

// Records returns the whole collection in insertion order.
func (s *Store) Records(_ context.Context) ([]geo.Record, error) {
	return s.read()
}

func (s *Store) read() ([]geo.Record, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ipdir: read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	var recs []geo.Record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.path, err)
	}
	return recs, nil
}

func (s *Store) write(recs []geo.Record) error {
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("ipdir: encode: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ipdir: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("ipdir: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("ipdir: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ipdir: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("ipdir: replace %s: %w", s.path, err)
	}
	return nil
}
