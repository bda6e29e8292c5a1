package player

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// The output device runs at a fixed format; every source is converted
// to it before it reaches oto.
const (
	outputRate        = 44100
	outputChannels    = 2
	outputFrameSize   = outputChannels * 2
	outputBytesPerSec = outputRate * outputChannels * 2
)

// normalizedSource converts an arbitrary pcmSource to 44.1 kHz stereo
// s16le using linear interpolation, upmixing mono to stereo. Sources
// already in the output format pass through untouched.
type normalizedSource struct {
	src   pcmSource
	carry carryBuffer

	passthrough  bool
	srcRate      int
	srcFrameSize int

	totalOut int64 // total output frames
	outPos   int64 // next output frame to produce

	curIdx  int64
	cur     [outputChannels]int16
	nxt     [outputChannels]int16
	srcEOF  bool
	readBuf []byte
}

func newNormalizedSource(src pcmSource) (pcmSource, error) {
	rate := src.SampleRate()
	if rate <= 0 {
		return nil, errors.Newf("unsupported sample rate %d", rate)
	}
	channels := src.ChannelCount()
	if channels < 1 || channels > outputChannels {
		return nil, errors.Newf("unsupported channel count %d", channels)
	}

	if rate == outputRate && channels == outputChannels {
		return &normalizedSource{src: src, passthrough: true}, nil
	}

	srcFrameSize := channels * 2
	srcFrames := src.Length() / int64(srcFrameSize)
	n := &normalizedSource{
		src:          src,
		srcRate:      rate,
		srcFrameSize: srcFrameSize,
		totalOut:     srcFrames * outputRate / int64(rate),
		readBuf:      make([]byte, srcFrameSize),
	}

	// Prime the interpolation window with the first two source frames.
	first, err := n.readFrame()
	if err != nil && err != io.EOF {
		return nil, err
	}
	n.cur, n.nxt = first, first
	if err != io.EOF {
		second, err := n.readFrame()
		if err != nil && err != io.EOF {
			return nil, err
		}
		if err == nil {
			n.nxt = second
		}
	}
	return n, nil
}

func (n *normalizedSource) Read(p []byte) (int, error) {
	if n.passthrough {
		return n.src.Read(p)
	}
	if c, ok := n.carry.drain(p); ok {
		return c, nil
	}
	if n.outPos >= n.totalOut {
		return 0, io.EOF
	}

	frames := int64(max(len(p)/outputFrameSize, 1))
	if remaining := n.totalOut - n.outPos; frames > remaining {
		frames = remaining
	}

	raw := make([]byte, frames*outputFrameSize)
	for i := int64(0); i < frames; i++ {
		num := n.outPos * int64(n.srcRate)
		idx := num / outputRate
		frac := num % outputRate
		if err := n.advanceTo(idx); err != nil {
			return 0, err
		}
		for ch := 0; ch < outputChannels; ch++ {
			v := int64(n.cur[ch]) + (int64(n.nxt[ch])-int64(n.cur[ch]))*frac/outputRate
			binary.LittleEndian.PutUint16(raw[i*outputFrameSize+int64(ch)*2:], uint16(int16(v)))
		}
		n.outPos++
	}
	return n.carry.emit(p, raw), nil
}

// advanceTo slides the two-frame window until cur is source frame idx.
func (n *normalizedSource) advanceTo(idx int64) error {
	for n.curIdx < idx {
		n.cur = n.nxt
		n.curIdx++
		if n.srcEOF {
			continue
		}
		frame, err := n.readFrame()
		if err == io.EOF {
			continue
		}
		if err != nil {
			return err
		}
		n.nxt = frame
	}
	return nil
}

// readFrame reads one source frame, duplicating mono into both output
// channels. Returns io.EOF once the source is exhausted.
func (n *normalizedSource) readFrame() ([outputChannels]int16, error) {
	var frame [outputChannels]int16
	if n.srcEOF {
		return n.cur, io.EOF
	}
	if _, err := io.ReadFull(n.src, n.readBuf); err != nil {
		n.srcEOF = true
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return n.cur, io.EOF
		}
		return frame, err
	}
	frame[0] = int16(binary.LittleEndian.Uint16(n.readBuf))
	if n.srcFrameSize == outputFrameSize {
		frame[1] = int16(binary.LittleEndian.Uint16(n.readBuf[2:]))
	} else {
		frame[1] = frame[0]
	}
	return frame, nil
}

func (n *normalizedSource) Length() int64 {
	if n.passthrough {
		return n.src.Length()
	}
	return n.totalOut * outputFrameSize
}

func (n *normalizedSource) SampleRate() int   { return outputRate }
func (n *normalizedSource) ChannelCount() int { return outputChannels }
