// Package songmeta derives song metadata from uploaded audio files.
//
// Tag parsing and duration calculation are independent passes: a file with a
// readable tag container but undecodable audio frames still yields metadata
// with a zero duration, and a file with no tags at all still yields a
// duration. Only a file that offers neither is rejected.
package songmeta

import (
	"errors"
	"fmt"
	"os"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/llehouerou/go-mp3"
)

// Metadata holds the fields extracted from an audio file. Title, Artist and
// Album are empty strings when the file carries no such tag; the caller is
// responsible for any fallback (e.g. substituting the upload filename as
// title). Duration is in whole seconds, 0 when it could not be computed.
type Metadata struct {
	Title    string
	Artist   string
	Album    string
	Duration int
}

// ExtractionError reports a file that could not be processed at all: it
// could not be opened, or it is not a valid tagged audio file. A readable
// file that merely lacks tags does not produce an ExtractionError.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract metadata from %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extract reads tag metadata and playback duration from the audio file at
// path. The file must already be fully written to disk: duration calculation
// decodes the MPEG stream from the start.
func Extract(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	meta := &Metadata{}
	tagged := false

	m, err := tag.ReadFrom(f)
	switch {
	case err == nil:
		meta.Title = m.Title()
		meta.Artist = m.Artist()
		meta.Album = m.Album()
		tagged = true
	case errors.Is(err, tag.ErrNoTagsFound):
		// Not an error: the file simply has no tag container.
	default:
		// dhowden/tag has issues with some UTF-16 encoded ID3 tags, retry
		// with the id3v2 parser before declaring the container unreadable.
		if fallback, ferr := readID3v2(path); ferr == nil {
			*meta = *fallback
			tagged = true
		} else {
			return nil, &ExtractionError{Path: path, Err: err}
		}
	}

	duration, derr := readDuration(f)
	if derr == nil {
		meta.Duration = duration
	}

	if !tagged && derr != nil {
		// Neither a tag container nor a decodable MPEG stream.
		return nil, &ExtractionError{Path: path, Err: fmt.Errorf("not a tagged audio file: %w", derr)}
	}

	return meta, nil
}

// readID3v2 reads the basic song fields using only the id3v2 library.
func readID3v2(path string) (*Metadata, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer id3tag.Close()

	return &Metadata{
		Title:  id3tag.Title(),
		Artist: id3tag.Artist(),
		Album:  id3tag.Album(),
	}, nil
}

// readDuration computes playback duration in seconds by decoding the MPEG
// stream. The reader is rewound first since tag parsing has consumed it.
func readDuration(f *os.File) (int, error) {
	if _, err := f.Seek(0, 0); err != nil {
		return 0, err
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, err
	}

	sampleRate := decoder.SampleRate()
	if sampleRate <= 0 {
		return 0, errors.New("mp3: invalid sample rate")
	}

	sampleCount := max(decoder.SampleCount(), 0)

	return int(sampleCount / int64(sampleRate)), nil
}
