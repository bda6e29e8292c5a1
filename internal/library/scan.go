package library

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Scan failure conditions, distinguished so callers can report them
// separately and keep their previous state.
var (
	ErrNotDirectory = errors.New("not a directory")
	ErrNoTracks     = errors.New("no audio files found")
)

// DefaultExtensions are the playable formats when no configuration
// overrides them.
var DefaultExtensions = []string{".mp3", ".ogg", ".flac", ".wav"}

// Scanner lists candidate audio files under a directory tree.
type Scanner struct {
	extensions    map[string]bool
	includeHidden bool
}

// NewScanner creates a Scanner for the given extensions (lowercased,
// leading dot). An empty list falls back to DefaultExtensions.
func NewScanner(extensions []string, includeHidden bool) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}
	return &Scanner{extensions: exts, includeHidden: includeHidden}
}

// Scan walks dir recursively and returns the sorted paths of all
// matching audio files. It returns ErrNotDirectory when dir does not
// exist or is not a directory, and ErrNoTracks when the walk finds
// nothing playable.
func (s *Scanner) Scan(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.Wrapf(ErrNotDirectory, "%s", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subdirectories are skipped, not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != dir && !s.includeHidden && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.includeHidden && isHidden(d.Name()) {
			return nil
		}
		if s.extensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", dir)
	}

	if len(files) == 0 {
		return nil, errors.Wrapf(ErrNoTracks, "%s", dir)
	}

	sort.Strings(files)
	return files, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
