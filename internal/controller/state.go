// Package controller owns playback state: the playlist ordering, the
// current track, the Stopped/Playing/Paused machine driving the audio
// engine, and the progress tick that detects end of track.
package controller

// State is the global playback state. It describes the engine, not any
// particular track.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}
