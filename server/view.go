package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"songshelf/logger"
	"songshelf/model"
)

const unknownField = "<Unknown>"

// SongView is the projection of a song rendered by the HTML templates.
// Mapping happens here, in one place, so the persisted entity never leaks
// presentation concerns like the "<Unknown>" placeholders.
type SongView struct {
	ID           int64
	Title        string
	DisplayTitle string
	Artist       string
	Album        string
	ArtistValue  string // raw artist for form prefill, empty when unset
	AlbumValue   string // raw album for form prefill, empty when unset
	Duration     int
	DurationText string
	Filename     string
	HasFile      bool
	CreatedAt    string
	UpdatedAt    string
}

// NewSongView maps a persisted song to its view projection.
func NewSongView(song *model.Song) SongView {
	artist := unknownField
	if song.Artist != nil && *song.Artist != "" {
		artist = *song.Artist
	}
	album := unknownField
	if song.Album != nil && *song.Album != "" {
		album = *song.Album
	}

	view := SongView{
		ID:           song.ID,
		Title:        song.Title,
		DisplayTitle: fmt.Sprintf("%s - %s", artist, song.Title),
		Artist:       artist,
		Album:        album,
		ArtistValue:  stringValue(song.Artist),
		AlbumValue:   stringValue(song.Album),
		Duration:     song.Duration,
		DurationText: formatDuration(song.Duration),
		CreatedAt:    song.CreatedAt.Format("2006-01-02 15:04"),
		UpdatedAt:    song.UpdatedAt.Format("2006-01-02 15:04"),
	}
	if song.Filename != nil && *song.Filename != "" {
		view.Filename = *song.Filename
		view.HasFile = true
	}
	return view
}

// NewSongViews maps a slice of songs for the index template.
func NewSongViews(songs []*model.Song) []SongView {
	views := make([]SongView, 0, len(songs))
	for _, song := range songs {
		views = append(views, NewSongView(song))
	}
	return views
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// formatDuration renders whole seconds as m:ss.
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Renderer executes the HTML templates loaded from the template directory.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses every template in dir.
func NewRenderer(dir string) (*Renderer, error) {
	templates, err := template.ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates in %s: %w", dir, err)
	}
	return &Renderer{templates: templates}, nil
}

// Render executes the named template into a buffer before touching the
// response, so a template error becomes a clean 500 instead of a half page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("failed to render template",
			logger.String("template", name),
			logger.ErrorField(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
