package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"songshelf/model"
)

func strPtr(s string) *string {
	return &s
}

func TestNewSongViewFullRecord(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	song := &model.Song{
		ID:        7,
		Title:     "The Sad Song",
		Artist:    strPtr("Johnny Cash"),
		Album:     strPtr("Unchained"),
		Duration:  249,
		Filename:  strPtr("the_sad_song.mp3"),
		CreatedAt: created,
		UpdatedAt: created,
	}

	view := NewSongView(song)

	assert.Equal(t, int64(7), view.ID)
	assert.Equal(t, "Johnny Cash - The Sad Song", view.DisplayTitle)
	assert.Equal(t, "Johnny Cash", view.Artist)
	assert.Equal(t, "Johnny Cash", view.ArtistValue)
	assert.Equal(t, "Unchained", view.Album)
	assert.Equal(t, "4:09", view.DurationText)
	assert.True(t, view.HasFile)
	assert.Equal(t, "the_sad_song.mp3", view.Filename)
	assert.Equal(t, "2024-03-01 12:30", view.CreatedAt)
}

func TestNewSongViewMissingFieldsGetPlaceholders(t *testing.T) {
	song := &model.Song{ID: 1, Title: "The Bipolar Song"}

	view := NewSongView(song)

	assert.Equal(t, "<Unknown> - The Bipolar Song", view.DisplayTitle)
	assert.Equal(t, "<Unknown>", view.Artist)
	assert.Equal(t, "<Unknown>", view.Album)
	// Form prefill values stay empty so the placeholder never gets saved.
	assert.Empty(t, view.ArtistValue)
	assert.Empty(t, view.AlbumValue)
	assert.False(t, view.HasFile)
	assert.Equal(t, "0:00", view.DurationText)
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{
		0:    "0:00",
		-5:   "0:00",
		9:    "0:09",
		60:   "1:00",
		249:  "4:09",
		3605: "60:05",
	}
	for seconds, want := range cases {
		assert.Equal(t, want, formatDuration(seconds), "%d seconds", seconds)
	}
}
