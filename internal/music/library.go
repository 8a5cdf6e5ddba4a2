package music

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
)

const (
	DefaultURLPrefix = "/music/"
	audioExt         = ".mp3"
)

var ErrNoTracks = errors.New("music: no audio files")

type Track struct {
	File string `json:"file"`
	URL  string `json:"url"`
}

type Option func(*Library)

// WithRand makes selection draw from r instead of the global source.
func WithRand(r *rand.Rand) Option {
	return func(l *Library) { l.rng = r }
}

// Library is a flat directory of audio files, listed on every call.
type Library struct {
	dir       string
	urlPrefix string

	mu  sync.Mutex
	rng *rand.Rand
}

func NewLibrary(dir string, opts ...Option) *Library {
	l := &Library{
		dir:       dir,
		urlPrefix: DefaultURLPrefix,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Library) Dir() string { return l.dir }

// Tracks lists the audio files in name order.
func (l *Library) Tracks() ([]Track, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("music: read %s: %w", l.dir, err)
	}
	var list []Track
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), audioExt) {
			list = append(list, Track{
				File: name,
				URL:  l.urlPrefix + url.PathEscape(name),
			})
		}
	}
	return list, nil
}

// Random picks one track uniformly. It returns ErrNoTracks when the
// directory holds no audio files.
func (l *Library) Random() (Track, error) {
	list, err := l.Tracks()
	if err != nil {
		return Track{}, err
	}
	if len(list) == 0 {
		return Track{}, ErrNoTracks
	}
	return list[l.intN(len(list))], nil
}

func (l *Library) intN(n int) int {
	if l.rng == nil {
		return rand.IntN(n)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.IntN(n)
}

// FileServer serves the files byte for byte. Directory paths are 404s.
func (l *Library) FileServer() http.Handler {
	return http.FileServer(filesOnly{http.Dir(l.dir)})
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
