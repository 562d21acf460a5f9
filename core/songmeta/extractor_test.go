package songmeta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestMP3 creates a minimal MP3 file (a single MPEG1 Layer3 frame,
// 128kbps, 44100Hz) with optional ID3v2 tags.
func createTestMP3(t *testing.T, dir, name string, tags map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)

	frame := make([]byte, 417)
	frame[0] = 0xff
	frame[1] = 0xfb
	frame[2] = 0x90
	frame[3] = 0x00

	require.NoError(t, os.WriteFile(path, frame, 0o600))

	if tags != nil {
		writeMP3Tags(t, path, tags)
	}
	return path
}

// writeMP3Tags writes real ID3v2 frames onto an existing MP3 file.
func writeMP3Tags(t *testing.T, path string, tags map[string]string) {
	t.Helper()

	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer id3tag.Close()

	if v, ok := tags["title"]; ok {
		id3tag.SetTitle(v)
	}
	if v, ok := tags["artist"]; ok {
		id3tag.SetArtist(v)
	}
	if v, ok := tags["album"]; ok {
		id3tag.SetAlbum(v)
	}
	require.NoError(t, id3tag.Save())
}

func TestExtractTaggedFile(t *testing.T) {
	path := createTestMP3(t, t.TempDir(), "test.mp3", map[string]string{
		"title":  "Atomyk Ebonpyre",
		"artist": "Homestuck",
		"album":  "Homestuck Vol. 1-4",
	})

	meta, err := Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "Atomyk Ebonpyre", meta.Title)
	assert.Equal(t, "Homestuck", meta.Artist)
	assert.Equal(t, "Homestuck Vol. 1-4", meta.Album)
	assert.GreaterOrEqual(t, meta.Duration, 0)
}

func TestExtractUntaggedFileIsNotAnError(t *testing.T) {
	path := createTestMP3(t, t.TempDir(), "untagged.mp3", nil)

	meta, err := Extract(path)
	require.NoError(t, err)

	// No tags means empty fields; the caller decides on fallbacks.
	assert.Empty(t, meta.Title)
	assert.Empty(t, meta.Artist)
	assert.Empty(t, meta.Album)
	assert.GreaterOrEqual(t, meta.Duration, 0)
}

func TestExtractNonAudioFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.mp3")
	content := []byte("this is definitely not an mp3 file, just some text pretending to be one\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	meta, err := Extract(path)
	require.Error(t, err)
	assert.Nil(t, meta)

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, path, extErr.Path)
}

func TestExtractMissingFileFails(t *testing.T) {
	meta, err := Extract(filepath.Join(t.TempDir(), "missing.mp3"))
	require.Error(t, err)
	assert.Nil(t, meta)

	var extErr *ExtractionError
	assert.ErrorAs(t, err, &extErr)
}

func TestExtractTaggedFileWithBrokenAudioDefaultsDurationToZero(t *testing.T) {
	// Tags are readable but the byte after them is not a decodable MPEG
	// stream: duration falls back to 0 instead of failing extraction.
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.mp3")
	require.NoError(t, os.WriteFile(path, []byte{0x00}, 0o600))
	writeMP3Tags(t, path, map[string]string{"title": "Set Theory", "artist": "Carbon Based Patterns"})

	meta, err := Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "Set Theory", meta.Title)
	assert.Equal(t, 0, meta.Duration)
}
