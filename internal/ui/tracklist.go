package ui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jgrue/ttunes/internal/controller"
	"github.com/jgrue/ttunes/internal/util"
)

// trackTable renders the playlist as a scrollable table. It keeps the
// playlist paths aligned with the visible rows so the cursor can be
// mapped back to a track.
type trackTable struct {
	table table.Model
	paths []string
}

func newTrackTable() trackTable {
	t := table.New(
		table.WithColumns(trackColumns(80)),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = tableHeaderStyle
	s.Selected = tableSelectedStyle
	t.SetStyles(s)
	return trackTable{table: t}
}

func trackColumns(width int) []table.Column {
	// Fixed columns first; the rest is split between the text columns.
	rest := width - 2 - 7 - 8
	if rest < 30 {
		rest = 30
	}
	title := rest * 2 / 5
	artist := rest * 3 / 10
	album := rest - title - artist
	return []table.Column{
		{Title: "", Width: 2},
		{Title: "Title", Width: title},
		{Title: "Artist", Width: artist},
		{Title: "Album", Width: album},
		{Title: "Length", Width: 7},
		{Title: "Genre", Width: 8},
	}
}

func (t *trackTable) sync(rows []controller.Row) {
	out := make([]table.Row, len(rows))
	paths := make([]string, len(rows))
	for i, row := range rows {
		out[i] = table.Row{
			row.Marker,
			row.Title,
			row.Artist,
			row.Album,
			util.FormatSeconds(row.Duration),
			row.Genre,
		}
		paths[i] = row.Path
	}
	t.table.SetRows(out)
	t.paths = paths
	if cursor := t.table.Cursor(); cursor >= len(out) && len(out) > 0 {
		t.table.SetCursor(len(out) - 1)
	}
}

func (t *trackTable) resize(width, height int) {
	t.table.SetColumns(trackColumns(width))
	t.table.SetWidth(width)
	if height < 3 {
		height = 3
	}
	t.table.SetHeight(height)
}

// selectedPath returns the track under the cursor, or "" for an empty list.
func (t *trackTable) selectedPath() string {
	cursor := t.table.Cursor()
	if cursor < 0 || cursor >= len(t.paths) {
		return ""
	}
	return t.paths[cursor]
}

// focusPath moves the cursor onto the given track if it is visible.
func (t *trackTable) focusPath(path string) {
	for i, p := range t.paths {
		if p == path {
			t.table.SetCursor(i)
			return
		}
	}
}

func (t *trackTable) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	t.table, cmd = t.table.Update(msg)
	return cmd
}

func (t *trackTable) view() string {
	return t.table.View()
}
