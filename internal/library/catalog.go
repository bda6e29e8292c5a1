package library

import "sort"

// Catalog maps track paths to their metadata records. It is rebuilt in
// full by Refresh and only replaced when the whole refresh succeeds, so
// a failed refresh leaves the previous contents intact.
type Catalog struct {
	scanner *Scanner
	read    func(string) (Track, error)

	dir    string
	tracks map[string]Track
}

// NewCatalog creates an empty Catalog that scans with the given Scanner.
func NewCatalog(scanner *Scanner) *Catalog {
	return &Catalog{
		scanner: scanner,
		read:    ReadTrack,
		tracks:  map[string]Track{},
	}
}

// Refresh rescans dir and rebuilds the catalog. On any error (bad
// directory, empty scan, unreadable file) the previous catalog is kept.
func (c *Catalog) Refresh(dir string) error {
	files, err := c.scanner.Scan(dir)
	if err != nil {
		return err
	}

	tracks := make(map[string]Track, len(files))
	for _, path := range files {
		t, err := c.read(path)
		if err != nil {
			return err
		}
		tracks[path] = t
	}

	c.dir = dir
	c.tracks = tracks
	return nil
}

// Get returns the record for path.
func (c *Catalog) Get(path string) (Track, bool) {
	t, ok := c.tracks[path]
	return t, ok
}

// Keys returns all track paths in lexicographic order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.tracks))
	for path := range c.tracks {
		keys = append(keys, path)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of catalogued tracks.
func (c *Catalog) Len() int { return len(c.tracks) }

// Directory returns the directory of the last successful refresh.
func (c *Catalog) Directory() string { return c.dir }
