package library

import "strings"

// Placeholder values used when a tag field is missing or blank.
const (
	UnknownTitle  = "<unknown track>"
	UnknownArtist = "<unknown artist>"
	UnknownAlbum  = "<unknown album>"
	UnknownGenre  = "<unknown genre>"
)

// Track is an immutable metadata record for a single audio file.
// Records are created during a catalog refresh and replaced wholesale
// on the next refresh, never mutated in place.
type Track struct {
	Path     string
	Title    string
	Artist   string
	Album    string
	Genre    string
	Duration float64 // seconds, 0 when unknown
}

// NewTrack builds a Track, substituting the unknown placeholders for
// empty or whitespace-only tag fields.
func NewTrack(path, title, artist, album, genre string, duration float64) Track {
	if duration < 0 {
		duration = 0
	}
	return Track{
		Path:     path,
		Title:    valueOrDefault(title, UnknownTitle),
		Artist:   valueOrDefault(artist, UnknownArtist),
		Album:    valueOrDefault(album, UnknownAlbum),
		Genre:    valueOrDefault(genre, UnknownGenre),
		Duration: duration,
	}
}

// SearchText returns the case-folded text the filter matches against.
func (t Track) SearchText() string {
	return strings.ToLower(t.Title + " " + t.Artist + " " + t.Album + " " + t.Genre)
}

// Matches reports whether every whitespace-separated token of query
// appears in the track's search text, or the raw query appears in the
// track's path. An empty query matches everything.
func (t Track) Matches(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	if strings.Contains(t.Path, query) {
		return true
	}
	search := t.SearchText()
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if !strings.Contains(search, token) {
			return false
		}
	}
	return true
}

func valueOrDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
