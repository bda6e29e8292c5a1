// Package playlist provides the ordered track sequence the player walks
// through. All transforms are pure: they build a new ordering from their
// input and never mutate the receiver.
package playlist

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/jgrue/ttunes/internal/library"
)

// Playlist is an ordered sequence of track paths.
type Playlist []string

// Natural returns the keys in lexicographic order.
func Natural(keys []string) Playlist {
	p := make(Playlist, len(keys))
	copy(p, keys)
	sort.Strings(p)
	return p
}

// Shuffled returns a uniform random permutation of the keys. Each call
// yields a fresh order.
func Shuffled(keys []string) Playlist {
	p := make(Playlist, len(keys))
	copy(p, keys)
	// Fisher-Yates shuffle
	for i := len(p) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// Filtered returns the paths of the tracks matching query, in natural
// order. An empty (or whitespace-only) query clears the filter and
// returns every track. An empty result is valid.
func Filtered(tracks []library.Track, query string) Playlist {
	query = strings.TrimSpace(query)

	var p Playlist
	for _, t := range tracks {
		if query == "" || t.Matches(query) {
			p = append(p, t.Path)
		}
	}
	sort.Strings(p)
	return p
}

// Rotate returns the playlist cyclically rotated by `by` positions,
// with deque semantics: Rotate(1) moves the tail element to the front,
// Rotate(-1) moves the head to the back. Rotating an empty or
// single-element playlist is a no-op.
func (p Playlist) Rotate(by int) Playlist {
	n := len(p)
	out := make(Playlist, n)
	copy(out, p)
	if n <= 1 {
		return out
	}
	k := ((by % n) + n) % n
	if k == 0 {
		return out
	}
	copy(out, p[n-k:])
	copy(out[k:], p[:n-k])
	return out
}

// IndexOf returns the position of path, or -1 when absent.
func (p Playlist) IndexOf(path string) int {
	for i, candidate := range p {
		if candidate == path {
			return i
		}
	}
	return -1
}

// Contains reports whether path is in the playlist.
func (p Playlist) Contains(path string) bool { return p.IndexOf(path) >= 0 }

// Head returns the first path, or false when the playlist is empty.
func (p Playlist) Head() (string, bool) {
	if len(p) == 0 {
		return "", false
	}
	return p[0], true
}
