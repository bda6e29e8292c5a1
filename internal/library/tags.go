package library

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrUnreadableTrack marks a file whose tags or audio stream could not
// be parsed. A refresh aborts on the first such file.
var ErrUnreadableTrack = errors.New("unreadable track")

// ReadTrack reads tags and duration for a single audio file and returns
// the resulting Track record. Missing tag fields fall back to the
// unknown placeholders; an unparsable file yields ErrUnreadableTrack.
func ReadTrack(path string) (Track, error) {
	title, artist, album, genre := readTags(path)
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	duration, err := readDuration(path)
	if err != nil {
		return Track{}, errors.Wrapf(ErrUnreadableTrack, "%s: %v", path, err)
	}

	return NewTrack(path, title, artist, album, genre, duration), nil
}

// readTags returns the raw tag fields, empty when absent. MP3 tags go
// through id3v2, everything else through dhowden/tag.
func readTags(path string) (title, artist, album, genre string) {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		t, err := id3v2.Open(path, id3v2.Options{Parse: true})
		if err != nil {
			return "", "", "", ""
		}
		defer t.Close()
		return t.Title(), t.Artist(), t.Album(), t.Genre()
	}

	f, err := os.Open(path)
	if err != nil {
		return "", "", "", ""
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return "", "", "", ""
	}
	return m.Title(), m.Artist(), m.Album(), m.Genre()
}

// readDuration probes the audio stream for its play time in seconds.
func readDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		dec, err := mp3.NewDecoder(f)
		if err != nil {
			return 0, err
		}
		// go-mp3 always emits 16-bit stereo.
		bytesPerSec := int64(dec.SampleRate()) * 4
		return float64(dec.Length()) / float64(bytesPerSec), nil
	case ".ogg":
		r, err := oggvorbis.NewReader(f)
		if err != nil {
			return 0, err
		}
		if r.SampleRate() == 0 {
			return 0, nil
		}
		return float64(r.Length()) / float64(r.SampleRate()), nil
	case ".flac":
		stream, err := flac.New(f)
		if err != nil {
			return 0, err
		}
		defer stream.Close()
		info := stream.Info
		if info.SampleRate == 0 {
			return 0, nil
		}
		return float64(info.NSamples) / float64(info.SampleRate), nil
	case ".wav":
		dec := wav.NewDecoder(f)
		d, err := dec.Duration()
		if err != nil {
			return 0, err
		}
		return d.Seconds(), nil
	default:
		return 0, errors.Newf("unsupported format %s", filepath.Ext(path))
	}
}
