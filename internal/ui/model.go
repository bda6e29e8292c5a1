package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"

	"github.com/jgrue/ttunes/internal/controller"
	"github.com/jgrue/ttunes/internal/util"
)

type mode int

const (
	modeList mode = iota
	modeFilter
	modeBrowser
	modeHelp
)

// Model is the Bubbletea model for the ttunes TUI. All playback state
// lives in the controller; the model only holds presentation state and
// the latest snapshot.
type Model struct {
	ctrl *controller.Controller
	snap controller.Snapshot

	tracks      trackTable
	filterInput textinput.Model
	browser     browserModel
	mode        mode

	tick   time.Duration
	spring harmonica.Spring
	shown  float64 // smoothed progress ratio
	vel    float64

	width    int
	height   int
	quitting bool
}

// New creates a new Model polling the controller tickRateHz times a second.
func New(ctrl *controller.Controller, tickRateHz int) Model {
	if tickRateHz <= 0 {
		tickRateHz = 30
	}

	ti := textinput.New()
	ti.Placeholder = "title, artist, album or genre"
	ti.Prompt = "/ "
	ti.CharLimit = 128
	ti.Width = 40

	m := Model{
		ctrl:        ctrl,
		tracks:      newTrackTable(),
		filterInput: ti,
		tick:        time.Second / time.Duration(tickRateHz),
		spring:      harmonica.NewSpring(harmonica.FPS(tickRateHz), 8.0, 0.9),
	}
	m.refresh()
	return m
}

// refresh pulls a fresh snapshot and mirrors it into the table.
func (m *Model) refresh() {
	m.snap = m.ctrl.Snapshot()
	m.tracks.sync(m.snap.Rows)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.tick), tea.SetWindowTitle("ttunes"))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.ctrl.Tick()
		m.refresh()
		m.shown, m.vel = m.spring.Update(m.shown, m.vel, m.snap.Progress)
		return m, tickCmd(m.tick)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tracks.resize(msg.Width-4, msg.Height-9)
		m.browser, _, _ = m.browser.update(msg)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeFilter:
			return m.handleFilterKey(msg)
		case modeBrowser:
			return m.handleBrowserKey(msg)
		case modeHelp:
			m.mode = modeList
			return m, nil
		default:
			return m.handleListKey(msg)
		}
	}

	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		return m.quit()
	}
	switch msg.String() {
	case " ":
		m.ctrl.Toggle()
	case "n":
		m.ctrl.Next()
		m.refresh()
		m.tracks.focusPath(m.snap.Current)
	case "p":
		m.ctrl.Previous()
		m.refresh()
		m.tracks.focusPath(m.snap.Current)
	case "x":
		m.ctrl.Stop()
	case "s":
		m.ctrl.ToggleShuffle()
		m.refresh()
		m.tracks.focusPath(m.snap.Current)
	case "enter":
		if path := m.tracks.selectedPath(); path != "" {
			m.ctrl.Select(path)
			m.ctrl.Play()
		}
	case "/":
		m.mode = modeFilter
		m.filterInput.SetValue(m.snap.Filter)
		m.filterInput.Focus()
		return m, textinput.Blink
	case "o":
		browser, err := newBrowser(m.snap.Directory)
		if err != nil {
			return m, nil
		}
		m.browser = browser
		m.browser, _, _ = m.browser.update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		m.mode = modeBrowser
		return m, nil
	case "?":
		m.mode = modeHelp
		return m, nil
	default:
		cmd := m.tracks.update(msg)
		return m, cmd
	}
	m.refresh()
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.ctrl.SetFilter(m.filterInput.Value())
		m.mode = modeList
		m.filterInput.Blur()
		m.refresh()
		m.tracks.focusPath(m.snap.Current)
		return m, nil
	case "esc":
		m.mode = modeList
		m.filterInput.Blur()
		return m, nil
	case "ctrl+c":
		return m.quit()
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m Model) handleBrowserKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if !m.browser.filtering() {
			m.mode = modeList
			return m, nil
		}
	case "ctrl+c":
		return m.quit()
	}

	browser, cmd, chosen := m.browser.update(msg)
	m.browser = browser
	if chosen != "" {
		m.ctrl.SetDirectory(chosen)
		m.mode = modeList
		m.refresh()
		m.tracks.focusPath(m.snap.Current)
	}
	return m, cmd
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.mode {
	case modeBrowser:
		return m.browser.view()
	case modeHelp:
		return helpView()
	}

	w := m.width
	if w < 40 {
		w = 80
	}

	header := headerStyle.Render("ttunes") + "  " + helpStyle.Render(m.snap.Directory)

	title := titleStyle.Render(m.snap.Now.Title)
	subtitle := artistStyle.Render(fmt.Sprintf("%s - %s", m.snap.Now.Artist, m.snap.Now.Album))

	elapsed := util.FormatSeconds(m.snap.Position)
	total := util.FormatSeconds(m.snap.Now.Duration)
	barWidth := w - len(elapsed) - len(total) - 8
	bar := renderProgressBar(m.shown, barWidth)
	progressLine := fmt.Sprintf("%s %s %s", timeStyle.Render(elapsed), bar, timeStyle.Render(total))

	left := m.snap.Status
	right := fmt.Sprintf("%d tracks", len(m.snap.Rows))
	if m.snap.Shuffled {
		right = "[shuffle]  " + right
	}
	gap := w - len(left) - len(right) - 6
	statusLine := statusStyle.Render(left) + spaces(gap) + statusStyle.Render(right)

	bottom := "  " + helpStyle.Render(helpText())
	if m.mode == modeFilter {
		bottom = "  " + m.filterInput.View()
	}

	lines := "\n"
	lines += "  " + header + "\n"
	lines += "\n"
	lines += "  " + title + "  " + subtitle + "\n"
	lines += "  " + progressLine + "\n"
	lines += "  " + statusLine + "\n"
	lines += "\n"
	lines += m.tracks.view() + "\n"
	lines += "\n"
	lines += bottom + "\n"

	return lines
}

func helpView() string {
	s := "\n"
	s += "  " + headerStyle.Render("ttunes keys") + "\n"
	s += "\n"
	s += "  " + statusStyle.Render("space     play / pause") + "\n"
	s += "  " + statusStyle.Render("enter     play the highlighted track") + "\n"
	s += "  " + statusStyle.Render("n / p     next / previous track") + "\n"
	s += "  " + statusStyle.Render("x         stop") + "\n"
	s += "  " + statusStyle.Render("s         toggle shuffle") + "\n"
	s += "  " + statusStyle.Render("/         filter the track list") + "\n"
	s += "  " + statusStyle.Render("o         open another directory") + "\n"
	s += "  " + statusStyle.Render("j/k ↑/↓   move the cursor") + "\n"
	s += "  " + statusStyle.Render("q         quit") + "\n"
	s += "\n"
	s += "  " + helpStyle.Render("press any key to go back") + "\n"
	return s
}
