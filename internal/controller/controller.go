package controller

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/jgrue/ttunes/internal/library"
	"github.com/jgrue/ttunes/internal/player"
	"github.com/jgrue/ttunes/internal/playlist"
)

// StatusIdle is shown when nothing is loaded.
const StatusIdle = "Idle"

// Library is the track store the controller reads from. *library.Catalog
// satisfies it.
type Library interface {
	Refresh(dir string) error
	Keys() []string
	Get(path string) (library.Track, bool)
	Len() int
	Directory() string
}

// Controller ties the catalog, the playlist and the audio engine together.
// It is not safe for concurrent use; the UI event loop is its only caller.
type Controller struct {
	engine player.Engine
	lib    Library

	list     playlist.Playlist
	current  string
	state    State
	shuffled bool
	filter   string
	status   string
	position float64
}

func New(lib Library, engine player.Engine) *Controller {
	return &Controller{
		engine: engine,
		lib:    lib,
		status: StatusIdle,
	}
}

// SetDirectory rescans dir and rebuilds the playlist from scratch. On
// failure the previous catalog, playlist and playback all survive; the
// error is surfaced in the status line.
func (c *Controller) SetDirectory(dir string) error {
	if err := c.lib.Refresh(dir); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("library refresh failed")
		c.status = refreshFailure(dir, err)
		return err
	}
	c.Stop()
	c.filter = ""
	c.shuffled = false
	c.list = playlist.Natural(c.lib.Keys())
	c.current, _ = c.list.Head()
	log.Info().Str("dir", dir).Int("tracks", c.lib.Len()).Msg("library loaded")
	c.status = fmt.Sprintf("Loaded %d tracks from %s", c.lib.Len(), dir)
	return nil
}

func refreshFailure(dir string, err error) string {
	switch {
	case errors.Is(err, library.ErrNotDirectory):
		return fmt.Sprintf("%s is not a directory", dir)
	case errors.Is(err, library.ErrNoTracks):
		return fmt.Sprintf("%s does not contain music", dir)
	default:
		return err.Error()
	}
}

// Play starts the current track, or resumes it when paused. Calling Play
// while already playing does nothing; the track is never restarted.
func (c *Controller) Play() {
	if c.state == Playing {
		return
	}
	if c.current == "" {
		c.status = "No track to play"
		return
	}
	if c.state == Paused {
		c.engine.Unpause()
	} else {
		if err := c.engine.LoadAndPlay(c.current); err != nil {
			log.Error().Err(err).Str("path", c.current).Msg("play failed")
			c.state = Stopped
			c.position = 0
			c.status = err.Error()
			return
		}
		c.position = 0
	}
	c.state = Playing
	c.status = c.nowPlayingStatus("|>")
}

// Pause suspends playback in place. It is a no-op unless playing.
func (c *Controller) Pause() {
	if c.state != Playing {
		return
	}
	c.engine.Pause()
	c.state = Paused
	c.status = c.nowPlayingStatus("||")
}

// Stop unloads the engine and rewinds the progress display. The current
// track selection is kept.
func (c *Controller) Stop() {
	c.engine.StopAndUnload()
	c.state = Stopped
	c.position = 0
	c.status = StatusIdle
}

// Toggle flips between playing and not playing.
func (c *Controller) Toggle() {
	if c.state == Playing {
		c.Pause()
	} else {
		c.Play()
	}
}

// Next moves to the following track in playlist order.
func (c *Controller) Next() { c.Advance(-1) }

// Previous moves to the preceding track.
func (c *Controller) Previous() { c.Advance(1) }

// Advance rotates the playlist by delta positions and makes the new head
// the current track. Negative delta moves forward, positive backward. If
// a track was playing, the new one starts immediately; if paused, the
// pause is discarded and the controller stops first.
func (c *Controller) Advance(delta int) {
	if len(c.list) == 0 {
		return
	}
	if c.state == Paused {
		c.Stop()
	}
	wasPlaying := c.state == Playing
	c.list = c.list.Rotate(delta)
	c.current, _ = c.list.Head()
	c.position = 0
	if !wasPlaying {
		return
	}
	if err := c.engine.LoadAndPlay(c.current); err != nil {
		log.Error().Err(err).Str("path", c.current).Msg("play failed")
		c.engine.StopAndUnload()
		c.state = Stopped
		c.status = err.Error()
		return
	}
	c.status = c.nowPlayingStatus("|>")
}

// Select jumps to the given track without disturbing the relative order
// of the playlist. Selecting the current track is a no-op.
func (c *Controller) Select(path string) {
	if path == c.current {
		return
	}
	target := c.list.IndexOf(path)
	if target < 0 {
		return
	}
	cur := c.list.IndexOf(c.current)
	if cur < 0 {
		cur = 0
	}
	c.Advance(cur - target)
}

// ToggleShuffle reorders the playlist in place, keeping the current track
// selected by path.
func (c *Controller) ToggleShuffle() {
	if c.shuffled {
		c.list = playlist.Natural(c.list)
		c.shuffled = false
		c.status = "Playlist shuffle: off"
	} else {
		c.list = playlist.Shuffled(c.list)
		c.shuffled = true
		c.status = "Playlist shuffle: on"
	}
	if !c.list.Contains(c.current) {
		c.current, _ = c.list.Head()
	}
}

// SetFilter rebuilds the playlist from the catalog entries matching query.
// Filtering never touches the engine: a playing track keeps playing even
// when the filter removes it from view, in which case the new head becomes
// the current selection.
func (c *Controller) SetFilter(query string) {
	query = strings.TrimSpace(query)
	c.filter = query
	c.shuffled = false
	c.list = playlist.Filtered(c.records(), query)
	if !c.list.Contains(c.current) {
		c.current, _ = c.list.Head()
	}
	if query == "" {
		c.status = "Filter removed"
	} else {
		c.status = fmt.Sprintf("Filter track list: '%s'", query)
	}
}

// Filter returns the active filter query.
func (c *Controller) Filter() string { return c.filter }

// Tick polls the engine once. It is intended to run on the UI tick, some
// tens of times a second. When the engine reports that the track ran out,
// the controller advances to the next one.
func (c *Controller) Tick() {
	if c.state == Stopped {
		return
	}
	pos := c.engine.Position()
	if c.state == Playing && c.finished(pos) {
		log.Debug().Str("path", c.current).Msg("track finished")
		c.Next()
		return
	}
	if pos >= 0 {
		c.position = pos
	}
}

// finished reports whether pos marks the end of the current track: either
// the engine's end sentinel, or the position passing the known duration.
// A zero duration never finishes by position alone.
func (c *Controller) finished(pos float64) bool {
	if pos < 0 {
		return true
	}
	if track, ok := c.lib.Get(c.current); ok && track.Duration > 0 {
		return pos >= track.Duration
	}
	return false
}

func (c *Controller) records() []library.Track {
	keys := c.lib.Keys()
	out := make([]library.Track, 0, len(keys))
	for _, key := range keys {
		if track, ok := c.lib.Get(key); ok {
			out = append(out, track)
		}
	}
	return out
}

func (c *Controller) nowPlayingStatus(icon string) string {
	track, ok := c.lib.Get(c.current)
	if !ok {
		return StatusIdle
	}
	return fmt.Sprintf("%s %s by %s", icon, track.Title, track.Artist)
}
