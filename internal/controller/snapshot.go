package controller

import "github.com/jgrue/ttunes/internal/library"

// Markers shown next to the current track in the list.
const (
	MarkerPlaying = "|>"
	MarkerPaused  = "||"
)

// Row is one playlist entry as the UI should render it.
type Row struct {
	Path     string
	Title    string
	Artist   string
	Album    string
	Genre    string
	Duration float64
	Marker   string
}

// NowPlaying describes the current track for the header area.
type NowPlaying struct {
	Title    string
	Artist   string
	Album    string
	Duration float64
}

// Snapshot is a point-in-time read model of the controller. The UI
// renders from it and never reaches into the controller's internals.
type Snapshot struct {
	Rows      []Row
	Current   string
	Now       NowPlaying
	Position  float64
	Progress  float64
	State     State
	Shuffled  bool
	Filter    string
	Status    string
	Directory string
}

// Snapshot captures the playlist in order, the current track's metadata
// and playback progress. Exactly one row carries a marker while a track
// is playing or paused; when stopped no row is marked.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Rows:      make([]Row, 0, len(c.list)),
		Current:   c.current,
		Position:  c.position,
		State:     c.state,
		Shuffled:  c.shuffled,
		Filter:    c.filter,
		Status:    c.status,
		Directory: c.lib.Directory(),
		Now: NowPlaying{
			Title:  library.UnknownTitle,
			Artist: library.UnknownArtist,
			Album:  library.UnknownAlbum,
		},
	}
	for _, path := range c.list {
		track, ok := c.lib.Get(path)
		if !ok {
			continue
		}
		row := Row{
			Path:     path,
			Title:    track.Title,
			Artist:   track.Artist,
			Album:    track.Album,
			Genre:    track.Genre,
			Duration: track.Duration,
		}
		if path == c.current {
			row.Marker = c.marker()
		}
		snap.Rows = append(snap.Rows, row)
	}
	if track, ok := c.lib.Get(c.current); ok {
		snap.Now = NowPlaying{
			Title:    track.Title,
			Artist:   track.Artist,
			Album:    track.Album,
			Duration: track.Duration,
		}
		if track.Duration > 0 {
			snap.Progress = min(c.position/track.Duration, 1)
		}
	}
	return snap
}

func (c *Controller) marker() string {
	switch c.state {
	case Playing:
		return MarkerPlaying
	case Paused:
		return MarkerPaused
	default:
		return ""
	}
}
