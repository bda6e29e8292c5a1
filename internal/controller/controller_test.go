package controller

import (
	"sort"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgrue/ttunes/internal/library"
	"github.com/jgrue/ttunes/internal/player"
)

type fakeEngine struct {
	loaded  string
	loads   []string
	paused  bool
	stopped int
	pos     float64
	loadErr error
}

func (e *fakeEngine) LoadAndPlay(path string) error {
	if e.loadErr != nil {
		return e.loadErr
	}
	e.loaded = path
	e.loads = append(e.loads, path)
	e.paused = false
	return nil
}

func (e *fakeEngine) Pause()   { e.paused = true }
func (e *fakeEngine) Unpause() { e.paused = false }

func (e *fakeEngine) StopAndUnload() {
	e.loaded = ""
	e.stopped++
}

func (e *fakeEngine) Position() float64 { return e.pos }
func (e *fakeEngine) Close() error      { return nil }

type fakeLibrary struct {
	dir        string
	tracks     map[string]library.Track
	refreshErr error
}

func (l *fakeLibrary) Refresh(dir string) error {
	if l.refreshErr != nil {
		return l.refreshErr
	}
	l.dir = dir
	return nil
}

func (l *fakeLibrary) Keys() []string {
	keys := make([]string, 0, len(l.tracks))
	for key := range l.tracks {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (l *fakeLibrary) Get(path string) (library.Track, bool) {
	track, ok := l.tracks[path]
	return track, ok
}

func (l *fakeLibrary) Len() int          { return len(l.tracks) }
func (l *fakeLibrary) Directory() string { return l.dir }

func testTracks() map[string]library.Track {
	return map[string]library.Track{
		"a.mp3": library.NewTrack("a.mp3", "Alpha", "Ann", "First", "rock", 180),
		"b.mp3": library.NewTrack("b.mp3", "Beta", "Bob", "Second", "jazz", 240),
		"c.mp3": library.NewTrack("c.mp3", "Gamma", "Cat", "Third", "rock", 0),
	}
}

func newTestController(t *testing.T) (*Controller, *fakeEngine, *fakeLibrary) {
	t.Helper()
	lib := &fakeLibrary{tracks: testTracks()}
	engine := &fakeEngine{}
	c := New(lib, engine)
	require.NoError(t, c.SetDirectory("/music"))
	return c, engine, lib
}

func TestSetDirectoryBuildsNaturalPlaylist(t *testing.T) {
	c, _, _ := newTestController(t)

	snap := c.Snapshot()
	require.Len(t, snap.Rows, 3)
	assert.Equal(t, "a.mp3", snap.Rows[0].Path)
	assert.Equal(t, "b.mp3", snap.Rows[1].Path)
	assert.Equal(t, "c.mp3", snap.Rows[2].Path)
	assert.Equal(t, "a.mp3", snap.Current)
	assert.Equal(t, Stopped, snap.State)
	assert.Equal(t, "/music", snap.Directory)
}

func TestSetDirectoryFailureKeepsEverything(t *testing.T) {
	c, engine, lib := newTestController(t)
	c.Play()

	lib.refreshErr = errors.Wrap(library.ErrNotDirectory, "/nope")
	require.Error(t, c.SetDirectory("/nope"))

	snap := c.Snapshot()
	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, "a.mp3", engine.loaded)
	assert.Equal(t, "/nope is not a directory", snap.Status)
	assert.Len(t, snap.Rows, 3)
}

func TestPlayPauseStop(t *testing.T) {
	c, engine, _ := newTestController(t)

	c.Play()
	assert.Equal(t, Playing, c.Snapshot().State)
	assert.Equal(t, "a.mp3", engine.loaded)
	assert.Equal(t, "|> Alpha by Ann", c.Snapshot().Status)

	c.Pause()
	assert.Equal(t, Paused, c.Snapshot().State)
	assert.True(t, engine.paused)
	assert.Equal(t, "|| Alpha by Ann", c.Snapshot().Status)

	c.Play()
	assert.Equal(t, Playing, c.Snapshot().State)
	assert.False(t, engine.paused)
	assert.Len(t, engine.loads, 1, "resume must not reload the track")

	c.Stop()
	snap := c.Snapshot()
	assert.Equal(t, Stopped, snap.State)
	assert.Zero(t, snap.Position)
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Empty(t, engine.loaded)
}

func TestPlayWhilePlayingDoesNotRestart(t *testing.T) {
	c, engine, _ := newTestController(t)

	c.Play()
	c.Play()
	c.Play()
	assert.Len(t, engine.loads, 1)
}

func TestPauseRequiresPlaying(t *testing.T) {
	c, engine, _ := newTestController(t)

	c.Pause()
	assert.Equal(t, Stopped, c.Snapshot().State)
	assert.False(t, engine.paused)
}

func TestToggle(t *testing.T) {
	c, _, _ := newTestController(t)

	c.Toggle()
	assert.Equal(t, Playing, c.Snapshot().State)
	c.Toggle()
	assert.Equal(t, Paused, c.Snapshot().State)
	c.Toggle()
	assert.Equal(t, Playing, c.Snapshot().State)
}

func TestNextCyclesThroughPlaylist(t *testing.T) {
	c, engine, _ := newTestController(t)
	c.Play()

	c.Next()
	assert.Equal(t, "b.mp3", c.Snapshot().Current)
	assert.Equal(t, "b.mp3", engine.loaded)

	c.Next()
	assert.Equal(t, "c.mp3", c.Snapshot().Current)

	c.Next()
	assert.Equal(t, "a.mp3", c.Snapshot().Current, "cycle wraps to the start")
	assert.Equal(t, []string{"a.mp3", "b.mp3", "c.mp3", "a.mp3"}, engine.loads)
}

func TestPreviousWrapsBackward(t *testing.T) {
	c, engine, _ := newTestController(t)
	c.Play()

	c.Previous()
	assert.Equal(t, "c.mp3", c.Snapshot().Current)
	assert.Equal(t, "c.mp3", engine.loaded)
}

func TestAdvanceWhileStoppedDoesNotPlay(t *testing.T) {
	c, engine, _ := newTestController(t)

	c.Next()
	assert.Equal(t, "b.mp3", c.Snapshot().Current)
	assert.Equal(t, Stopped, c.Snapshot().State)
	assert.Empty(t, engine.loads)
}

func TestAdvanceWhilePausedStopsFirst(t *testing.T) {
	c, engine, _ := newTestController(t)
	c.Play()
	c.Pause()

	c.Next()
	snap := c.Snapshot()
	assert.Equal(t, "b.mp3", snap.Current)
	assert.Equal(t, Stopped, snap.State)
	assert.Len(t, engine.loads, 1, "the next track is selected, not started")
}

func TestAdvanceLoadFailureStops(t *testing.T) {
	c, engine, _ := newTestController(t)
	c.Play()

	engine.loadErr = errors.New("corrupt stream")
	c.Next()
	snap := c.Snapshot()
	assert.Equal(t, Stopped, snap.State)
	assert.Equal(t, "b.mp3", snap.Current)
	assert.Equal(t, "corrupt stream", snap.Status)
}

func TestSelectRotatesToTrack(t *testing.T) {
	c, engine, _ := newTestController(t)
	c.Play()

	c.Select("c.mp3")
	snap := c.Snapshot()
	assert.Equal(t, "c.mp3", snap.Current)
	assert.Equal(t, "c.mp3", engine.loaded)
	paths := []string{snap.Rows[0].Path, snap.Rows[1].Path, snap.Rows[2].Path}
	assert.Equal(t, []string{"c.mp3", "a.mp3", "b.mp3"}, paths, "relative order survives the jump")
}

func TestSelectCurrentIsNoop(t *testing.T) {
	c, engine, _ := newTestController(t)
	c.Play()

	c.Select("a.mp3")
	assert.Len(t, engine.loads, 1)
}

func TestSelectUnknownPathIsNoop(t *testing.T) {
	c, _, _ := newTestController(t)

	c.Select("zz.mp3")
	assert.Equal(t, "a.mp3", c.Snapshot().Current)
}

func TestToggleShuffleKeepsCurrent(t *testing.T) {
	c, _, _ := newTestController(t)
	c.Next()
	require.Equal(t, "b.mp3", c.Snapshot().Current)

	c.ToggleShuffle()
	snap := c.Snapshot()
	assert.True(t, snap.Shuffled)
	assert.Equal(t, "b.mp3", snap.Current)
	assert.Len(t, snap.Rows, 3)

	c.ToggleShuffle()
	snap = c.Snapshot()
	assert.False(t, snap.Shuffled)
	assert.Equal(t, "b.mp3", snap.Current)
	assert.Equal(t, "a.mp3", snap.Rows[0].Path)
}

func TestSetFilterNarrowsPlaylist(t *testing.T) {
	c, _, _ := newTestController(t)

	c.SetFilter("rock")
	snap := c.Snapshot()
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, "a.mp3", snap.Rows[0].Path)
	assert.Equal(t, "c.mp3", snap.Rows[1].Path)
	assert.Equal(t, "Filter track list: 'rock'", snap.Status)

	c.SetFilter("")
	snap = c.Snapshot()
	assert.Len(t, snap.Rows, 3)
	assert.Equal(t, "Filter removed", snap.Status)
}

func TestSetFilterKeepsPlaybackWhenCurrentFilteredOut(t *testing.T) {
	c, engine, _ := newTestController(t)
	c.Play()

	c.SetFilter("jazz")
	snap := c.Snapshot()
	assert.Equal(t, "b.mp3", snap.Current, "current falls back to the new head")
	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, "a.mp3", engine.loaded, "the audible track is untouched")
}

func TestPlayWithEmptyPlaylist(t *testing.T) {
	c, engine, _ := newTestController(t)

	c.SetFilter("no such track")
	c.Play()
	snap := c.Snapshot()
	assert.Equal(t, Stopped, snap.State)
	assert.Equal(t, "No track to play", snap.Status)
	assert.Empty(t, engine.loads)
}

func TestTickUpdatesPosition(t *testing.T) {
	c, engine, _ := newTestController(t)
	c.Play()

	engine.pos = 12.5
	c.Tick()
	snap := c.Snapshot()
	assert.InDelta(t, 12.5, snap.Position, 1e-9)
	assert.InDelta(t, 12.5/180, snap.Progress, 1e-9)
}

func TestTickIgnoresEngineWhenStopped(t *testing.T) {
	c, engine, _ := newTestController(t)

	engine.pos = 55
	c.Tick()
	assert.Zero(t, c.Snapshot().Position)
}

func TestTickAdvancesOnFinishedSentinel(t *testing.T) {
	c, engine, _ := newTestController(t)
	c.Play()

	engine.pos = player.FinishedPosition
	c.Tick()
	snap := c.Snapshot()
	assert.Equal(t, "b.mp3", snap.Current)
	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, "b.mp3", engine.loaded)
	assert.Zero(t, snap.Position)
}

func TestTickAdvancesWhenPositionPassesDuration(t *testing.T) {
	c, engine, _ := newTestController(t)
	c.Play()

	engine.pos = 180
	c.Tick()
	assert.Equal(t, "b.mp3", c.Snapshot().Current)
}

func TestTickZeroDurationNeverFinishesByPosition(t *testing.T) {
	c, engine, _ := newTestController(t)
	c.Next()
	c.Next()
	require.Equal(t, "c.mp3", c.Snapshot().Current)
	c.Play()

	engine.pos = 9999
	c.Tick()
	snap := c.Snapshot()
	assert.Equal(t, "c.mp3", snap.Current)
	assert.InDelta(t, 9999, snap.Position, 1e-9)
	assert.Zero(t, snap.Progress)
}

func TestTickWhilePausedKeepsPosition(t *testing.T) {
	c, engine, _ := newTestController(t)
	c.Play()
	engine.pos = 30
	c.Tick()
	c.Pause()

	engine.pos = player.FinishedPosition
	c.Tick()
	snap := c.Snapshot()
	assert.Equal(t, Paused, snap.State)
	assert.Equal(t, "a.mp3", snap.Current)
	assert.InDelta(t, 30, snap.Position, 1e-9)
}

func TestSnapshotMarkers(t *testing.T) {
	c, _, _ := newTestController(t)

	markers := func() []string {
		var out []string
		for _, row := range c.Snapshot().Rows {
			if row.Marker != "" {
				out = append(out, row.Marker)
			}
		}
		return out
	}

	assert.Empty(t, markers())

	c.Play()
	assert.Equal(t, []string{MarkerPlaying}, markers())

	c.Pause()
	assert.Equal(t, []string{MarkerPaused}, markers())

	c.Stop()
	assert.Empty(t, markers())
}

func TestSnapshotNowPlayingFallsBackToPlaceholders(t *testing.T) {
	lib := &fakeLibrary{tracks: map[string]library.Track{}}
	c := New(lib, &fakeEngine{})

	now := c.Snapshot().Now
	assert.Equal(t, library.UnknownTitle, now.Title)
	assert.Equal(t, library.UnknownArtist, now.Artist)
	assert.Equal(t, library.UnknownAlbum, now.Album)
}

func TestProgressCapsAtOne(t *testing.T) {
	c, engine, _ := newTestController(t)
	c.Play()

	engine.pos = 179.999
	c.Tick()
	assert.LessOrEqual(t, c.Snapshot().Progress, 1.0)
}
