package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "ctrl+c":
		return true
	}
	return false
}

func helpText() string {
	return "space play/pause  n/p track  x stop  s shuffle  / filter  o open  ? help  q quit"
}
