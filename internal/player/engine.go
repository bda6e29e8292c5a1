// Package player implements the audio engine behind the playback
// controller: format decoders, sample-rate normalization, and output
// through oto.
package player

// FinishedPosition is the sentinel returned by Position once the loaded
// track has been fully decoded and drained from the output device. The
// engine never reports a negative position before playback has started,
// so a negative value always means the track is over.
const FinishedPosition = -0.01

// Engine is the playback boundary the controller drives. Calls are
// expected to be serialized by the caller; implementations are not
// required to be safe for concurrent use beyond Position polling.
type Engine interface {
	// LoadAndPlay stops whatever is loaded, loads the file at path and
	// starts playing it from the beginning.
	LoadAndPlay(path string) error

	// Pause suspends playback, keeping the current position.
	Pause()

	// Unpause resumes paused playback in place.
	Unpause()

	// StopAndUnload stops playback and releases the loaded track.
	StopAndUnload()

	// Position returns the playback position of the loaded track in
	// seconds, 0 when nothing is loaded or the track has not started,
	// and FinishedPosition once the track has played to the end.
	Position() float64

	// Close releases the engine. The engine must not be used afterwards.
	Close() error
}
