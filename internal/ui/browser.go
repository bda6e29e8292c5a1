package ui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
)

type useItem struct{ path string }

func (i useItem) Title() string       { return "Load this directory" }
func (i useItem) Description() string { return i.path }
func (i useItem) FilterValue() string { return "load" }

type upItem struct{}

func (i upItem) Title() string       { return ".." }
func (i upItem) Description() string { return "parent directory" }
func (i upItem) FilterValue() string { return ".." }

type dirItem struct{ name string }

func (i dirItem) Title() string       { return i.name + "/" }
func (i dirItem) Description() string { return "directory" }
func (i dirItem) FilterValue() string { return i.name }

// browserModel lets the user walk the filesystem and pick a directory to
// load as the library.
type browserModel struct {
	list list.Model
	path string
}

func newBrowser(path string) (browserModel, error) {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	l := list.New(nil, delegate, 80, 20)
	l.Title = "Open directory"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = headerStyle

	b := browserModel{list: l}
	if err := b.setPath(path); err != nil {
		return b, err
	}
	return b, nil
}

func (b *browserModel) setPath(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "resolve directory")
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return errors.Wrapf(err, "cannot read %s", abs)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	items := []list.Item{useItem{path: abs}}
	if filepath.Dir(abs) != abs {
		items = append(items, upItem{})
	}
	for _, name := range names {
		items = append(items, dirItem{name: name})
	}

	b.path = abs
	b.list.Title = abs
	b.list.ResetFilter()
	b.list.SetItems(items)
	b.list.Select(0)
	return nil
}

// filtering reports whether the embedded list has an active filter
// prompt, which claims the esc key for itself.
func (b browserModel) filtering() bool {
	return b.list.FilterState() == list.Filtering
}

// update handles one message. It returns the chosen directory when the
// user confirms, or "" while browsing continues.
func (b browserModel) update(msg tea.Msg) (browserModel, tea.Cmd, string) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if b.list.FilterState() == list.Filtering {
			break
		}
		if msg.String() == "enter" {
			switch item := b.list.SelectedItem().(type) {
			case useItem:
				return b, nil, item.path
			case upItem:
				b.setPath(filepath.Dir(b.path))
				return b, nil, ""
			case dirItem:
				b.setPath(filepath.Join(b.path, item.name))
				return b, nil, ""
			}
		}

	case tea.WindowSizeMsg:
		b.list.SetWidth(msg.Width)
		b.list.SetHeight(msg.Height - 2)
		return b, nil, ""
	}

	var cmd tea.Cmd
	b.list, cmd = b.list.Update(msg)
	return b, cmd, ""
}

func (b browserModel) view() string {
	return b.list.View() + "\n" + "  " + helpStyle.Render("enter open/choose  esc back")
}
