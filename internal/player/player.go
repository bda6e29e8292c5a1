package player

import (
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/oto/v3"
	zlog "github.com/rs/zerolog/log"
)

// countingReader tracks how many decoded bytes the output device has
// pulled from the stream, and whether the stream has been exhausted.
type countingReader struct {
	src io.Reader
	mu  sync.Mutex
	pos int64
	eof bool
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.src.Read(p)
	c.mu.Lock()
	c.pos += int64(n)
	if err == io.EOF {
		c.eof = true
	}
	c.mu.Unlock()
	return n, err
}

func (c *countingReader) Pos() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

func (c *countingReader) EOF() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eof
}

// output is the slice of *oto.Player the engine uses.
type output interface {
	Play()
	Pause()
	SetVolume(float64)
	BufferedSize() int
	Close() error
}

// Oto is the oto-backed Engine. It holds at most one loaded track at a
// time; loading a new one unloads the previous.
type Oto struct {
	newOutput func(io.Reader) output

	file    *os.File
	counter *countingReader
	out     output
	paused  bool
	volume  float64
}

var (
	otoCtx     *oto.Context
	otoOnce    sync.Once
	otoInitErr error
)

// The oto context is process-global and cannot be torn down, so it is
// created once and shared.
func sharedContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   outputRate,
			ChannelCount: outputChannels,
			Format:       oto.FormatSignedInt16LE,
		})
		if otoInitErr == nil {
			<-ready
		}
	})
	return otoCtx, otoInitErr
}

// NewOto creates the audio engine, initializing the audio device on
// first use.
func NewOto() (*Oto, error) {
	ctx, err := sharedContext()
	if err != nil {
		return nil, errors.Wrap(err, "initializing audio output")
	}
	return &Oto{
		newOutput: func(r io.Reader) output { return ctx.NewPlayer(r) },
		volume:    1,
	}, nil
}

// SetVolume sets the output volume for the current and all future
// tracks. Values outside [0, 1] are clamped.
func (o *Oto) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	o.volume = v
	if o.out != nil {
		o.out.SetVolume(v)
	}
}

// LoadAndPlay implements Engine.
func (o *Oto) LoadAndPlay(path string) error {
	o.StopAndUnload()

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}

	src, err := openSource(f)
	if err != nil {
		f.Close()
		return err
	}
	norm, err := newNormalizedSource(src)
	if err != nil {
		f.Close()
		return err
	}

	o.file = f
	o.counter = &countingReader{src: norm}
	o.out = o.newOutput(o.counter)
	o.out.SetVolume(o.volume)
	o.paused = false
	o.out.Play()

	zlog.Debug().Str("path", path).Msg("engine: load and play")
	return nil
}

// Pause implements Engine.
func (o *Oto) Pause() {
	if o.out == nil || o.paused {
		return
	}
	o.out.Pause()
	o.paused = true
	zlog.Debug().Msg("engine: pause")
}

// Unpause implements Engine.
func (o *Oto) Unpause() {
	if o.out == nil || !o.paused {
		return
	}
	o.out.Play()
	o.paused = false
	zlog.Debug().Msg("engine: unpause")
}

// StopAndUnload implements Engine.
func (o *Oto) StopAndUnload() {
	if o.out != nil {
		if err := o.out.Close(); err != nil {
			zlog.Warn().Err(err).Msg("engine: closing output")
		}
		o.out = nil
	}
	if o.file != nil {
		o.file.Close()
		o.file = nil
	}
	o.counter = nil
	o.paused = false
}

// Position implements Engine. The position is derived from the bytes
// handed to the output device minus the bytes it has not played yet, so
// a freshly loaded track reports 0 until audio actually starts, and
// FinishedPosition is only reported once the device has drained the
// whole stream.
func (o *Oto) Position() float64 {
	if o.counter == nil {
		return 0
	}
	buffered := 0
	if o.out != nil {
		buffered = o.out.BufferedSize()
	}
	if o.counter.EOF() && buffered == 0 {
		return FinishedPosition
	}
	played := o.counter.Pos() - int64(buffered)
	if played < 0 {
		played = 0
	}
	return float64(played) / float64(outputBytesPerSec)
}

// Close implements Engine.
func (o *Oto) Close() error {
	o.StopAndUnload()
	return nil
}
