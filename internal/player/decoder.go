package player

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// pcmSource is a decoded audio stream: signed 16-bit little-endian
// samples, interleaved, at the source's native rate and channel count.
type pcmSource interface {
	io.Reader
	Length() int64 // total decoded bytes
	SampleRate() int
	ChannelCount() int
}

// openSource picks a decoder by file extension.
func openSource(f *os.File) (pcmSource, error) {
	switch strings.ToLower(filepath.Ext(f.Name())) {
	case ".mp3":
		return newMP3Source(f)
	case ".ogg":
		return newOGGSource(f)
	case ".flac":
		return newFLACSource(f)
	case ".wav":
		return newWAVSource(f)
	default:
		return nil, errors.Newf("unsupported format %s", filepath.Ext(f.Name()))
	}
}

// clamp16 converts an int to a bounded 16-bit sample.
func clamp16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// carryBuffer holds decoded bytes that did not fit the caller's slice.
type carryBuffer struct {
	buf []byte
}

func (c *carryBuffer) drain(p []byte) (int, bool) {
	if len(c.buf) == 0 {
		return 0, false
	}
	n := copy(p, c.buf)
	c.buf = c.buf[n:]
	return n, true
}

func (c *carryBuffer) emit(p, raw []byte) int {
	n := copy(p, raw)
	if n < len(raw) {
		c.buf = raw[n:]
	}
	return n
}

// --- MP3 ---

// go-mp3 already produces s16le stereo at the stream's sample rate.
type mp3Source struct {
	dec *mp3.Decoder
}

func newMP3Source(f *os.File) (*mp3Source, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding MP3")
	}
	return &mp3Source{dec: dec}, nil
}

func (s *mp3Source) Read(p []byte) (int, error) { return s.dec.Read(p) }
func (s *mp3Source) Length() int64              { return s.dec.Length() }
func (s *mp3Source) SampleRate() int            { return s.dec.SampleRate() }
func (s *mp3Source) ChannelCount() int          { return 2 }

// --- OGG Vorbis ---

type oggSource struct {
	reader *oggvorbis.Reader
	carry  carryBuffer
}

func newOGGSource(f *os.File) (*oggSource, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding OGG")
	}
	return &oggSource{reader: reader}, nil
}

func (s *oggSource) Read(p []byte) (int, error) {
	if n, ok := s.carry.drain(p); ok {
		return n, nil
	}

	// The reader wants a buffer sized in whole frames.
	ch := s.reader.Channels()
	count := len(p) / 2
	count -= count % ch
	if count < ch {
		count = ch
	}
	samples := make([]float32, count)
	n, err := s.reader.Read(samples)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := samples[i]
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(int16(v*32767)))
	}
	return s.carry.emit(p, raw), err
}

func (s *oggSource) Length() int64 {
	return s.reader.Length() * int64(s.reader.Channels()) * 2
}
func (s *oggSource) SampleRate() int   { return s.reader.SampleRate() }
func (s *oggSource) ChannelCount() int { return s.reader.Channels() }

// --- FLAC ---

type flacSource struct {
	stream   *flac.Stream
	carry    carryBuffer
	channels int
	bps      int
}

func newFLACSource(f *os.File) (*flacSource, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding FLAC")
	}
	return &flacSource{
		stream:   stream,
		channels: int(stream.Info.NChannels),
		bps:      int(stream.Info.BitsPerSample),
	}, nil
}

func (s *flacSource) Read(p []byte) (int, error) {
	if n, ok := s.carry.drain(p); ok {
		return n, nil
	}

	frame, err := s.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	nSamples := int(frame.Subframes[0].NSamples)
	raw := make([]byte, nSamples*s.channels*2)
	for i := 0; i < nSamples; i++ {
		for ch := 0; ch < s.channels; ch++ {
			sample := int(frame.Subframes[ch].Samples[i])
			switch {
			case s.bps > 16:
				sample >>= s.bps - 16
			case s.bps < 16:
				sample <<= 16 - s.bps
			}
			binary.LittleEndian.PutUint16(raw[(i*s.channels+ch)*2:], uint16(clamp16(sample)))
		}
	}
	return s.carry.emit(p, raw), nil
}

func (s *flacSource) Length() int64 {
	return int64(s.stream.Info.NSamples) * int64(s.channels) * 2
}
func (s *flacSource) SampleRate() int   { return int(s.stream.Info.SampleRate) }
func (s *flacSource) ChannelCount() int { return s.channels }

// --- WAV ---

type wavSource struct {
	file     *os.File
	carry    carryBuffer
	rate     int
	channels int
	bitDepth int
	length   int64
}

func newWAVSource(f *os.File) (*wavSource, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	// Position the file reader at the start of PCM data.
	if err := dec.FwdToPCM(); err != nil {
		return nil, errors.Wrap(err, "reading WAV PCM data")
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, errors.Newf("unsupported WAV bit depth %d", bitDepth)
	}

	channels := int(dec.NumChans)
	srcFrames := dec.PCMLen() / int64(channels*bitDepth/8)
	return &wavSource{
		file:     f,
		rate:     int(dec.SampleRate),
		channels: channels,
		bitDepth: bitDepth,
		length:   srcFrames * int64(channels) * 2,
	}, nil
}

func (s *wavSource) Read(p []byte) (int, error) {
	if n, ok := s.carry.drain(p); ok {
		return n, nil
	}

	bytesPerSample := s.bitDepth / 8
	samples := max(len(p)/2, 1)
	src := make([]byte, samples*bytesPerSample)
	n, err := io.ReadFull(s.file, src)
	read := n / bytesPerSample
	if read == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, read*2)
	for i := 0; i < read; i++ {
		off := i * bytesPerSample
		var sample int
		switch s.bitDepth {
		case 8:
			// 8-bit WAV is unsigned
			sample = (int(src[off]) - 128) << 8
		case 16:
			sample = int(int16(binary.LittleEndian.Uint16(src[off:])))
		case 24:
			v := int32(src[off]) | int32(src[off+1])<<8 | int32(src[off+2])<<16
			if v&0x800000 != 0 {
				v |= ^int32(0xFFFFFF)
			}
			sample = int(v >> 8)
		case 32:
			sample = int(int32(binary.LittleEndian.Uint32(src[off:])) >> 16)
		}
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(clamp16(sample)))
	}

	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return s.carry.emit(p, raw), err
}

func (s *wavSource) Length() int64     { return s.length }
func (s *wavSource) SampleRate() int   { return s.rate }
func (s *wavSource) ChannelCount() int { return s.channels }
