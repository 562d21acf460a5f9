package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"songshelf/core/upload"
	"songshelf/logger"
	"songshelf/model"
	"songshelf/repository"
)

// maxUploadSize caps a whole multipart submission.
const maxUploadSize = 100 << 20 // 100MB

// uploadFieldName is the form field carrying the audio files.
const uploadFieldName = "songs"

// SongHandler serves the server-rendered song pages.
type SongHandler struct {
	repo        repository.SongRepository
	coordinator *upload.Coordinator
	renderer    *Renderer
}

// NewSongHandler creates a handler over the given repository and coordinator.
func NewSongHandler(repo repository.SongRepository, coordinator *upload.Coordinator, renderer *Renderer) *SongHandler {
	return &SongHandler{repo: repo, coordinator: coordinator, renderer: renderer}
}

// pageData is the envelope passed to every template.
type pageData struct {
	Title string
	Song  SongView
	Songs []SongView
}

// IndexHandler renders the song listing.
func (h *SongHandler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	songs, err := h.repo.GetAllSongs()
	if err != nil {
		logger.Error("failed to list songs", logger.ErrorField(err))
		http.Error(w, fmt.Sprintf("Failed to list songs: %v", err), http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, http.StatusOK, "index.html", pageData{
		Title: "Song listing",
		Songs: NewSongViews(songs),
	})
}

// NewHandler renders the upload form.
func (h *SongHandler) NewHandler(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "new.html", pageData{Title: "Upload songs"})
}

// CreateHandler accepts a multipart submission of audio files and imports
// them through the upload coordinator. Files the coordinator skips are
// silently absent from the result; as long as at least one file made it, the
// client is redirected to the last inserted song.
func (h *SongHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		logger.Warn("failed to parse multipart form", logger.ErrorField(err))
		http.Error(w, fmt.Sprintf("Invalid upload: %v", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[uploadFieldName]

	result, err := h.coordinator.ProcessUpload(files)
	if err != nil {
		logger.Error("upload batch aborted", logger.ErrorField(err))
		http.Error(w, fmt.Sprintf("Failed to save songs: %v", err), http.StatusInternalServerError)
		return
	}

	if result.Inserted == 0 {
		http.Error(w, "No songs were imported from the upload", http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/songs/%d", result.LastID), http.StatusSeeOther)
}

// ShowHandler renders a single song.
func (h *SongHandler) ShowHandler(w http.ResponseWriter, r *http.Request) {
	song, ok := h.findSong(w, r)
	if !ok {
		return
	}

	view := NewSongView(song)
	h.renderer.Render(w, http.StatusOK, "show.html", pageData{
		Title: view.DisplayTitle,
		Song:  view,
	})
}

// EditHandler renders the metadata edit form.
func (h *SongHandler) EditHandler(w http.ResponseWriter, r *http.Request) {
	song, ok := h.findSong(w, r)
	if !ok {
		return
	}

	view := NewSongView(song)
	h.renderer.Render(w, http.StatusOK, "edit.html", pageData{
		Title: "Edit " + view.DisplayTitle,
		Song:  view,
	})
}

// UpdateHandler applies a form-encoded metadata update. The backing file and
// created_at are never touched; re-uploading is not supported here.
func (h *SongHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.songID(r)
	if !ok {
		h.NotFoundHandler(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, fmt.Sprintf("Invalid form: %v", err), http.StatusBadRequest)
		return
	}

	newSong, err := songFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateSong(id, newSong); err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			h.NotFoundHandler(w, r)
			return
		}
		logger.Error("failed to update song", logger.Int64("songId", id), logger.ErrorField(err))
		http.Error(w, fmt.Sprintf("Failed to update song: %v", err), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/songs/%d", id), http.StatusSeeOther)
}

// DeleteHandler destroys a song. The row goes first, then the backing file:
// a crash in between leaves an orphaned file in the upload directory, which
// is preferable to a row whose file is gone.
func (h *SongHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	song, ok := h.findSong(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteSong(song.ID); err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			h.NotFoundHandler(w, r)
			return
		}
		logger.Error("failed to delete song", logger.Int64("songId", song.ID), logger.ErrorField(err))
		http.Error(w, fmt.Sprintf("Failed to delete song: %v", err), http.StatusInternalServerError)
		return
	}

	if song.Filename != nil {
		if err := h.coordinator.RemoveSongFile(*song.Filename); err != nil {
			// The record is already gone; an orphaned file is tolerated.
			logger.Warn("failed to remove song file",
				logger.String("filename", *song.Filename),
				logger.ErrorField(err))
		}
	}

	http.Redirect(w, r, "/songs", http.StatusSeeOther)
}

// NotFoundHandler renders the 404 page for unmatched paths and missing ids.
func (h *SongHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusNotFound, "404.html", pageData{Title: "Not found"})
}

// songID extracts the id path variable. A non-numeric id is treated the same
// as a missing record.
func (h *SongHandler) songID(r *http.Request) (int64, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// findSong loads the song addressed by the request, rendering the 404 page
// on any kind of miss. Other repository errors become a 500.
func (h *SongHandler) findSong(w http.ResponseWriter, r *http.Request) (*model.Song, bool) {
	id, ok := h.songID(r)
	if !ok {
		h.NotFoundHandler(w, r)
		return nil, false
	}

	song, err := h.repo.GetSongByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			h.NotFoundHandler(w, r)
			return nil, false
		}
		logger.Error("failed to load song", logger.Int64("songId", id), logger.ErrorField(err))
		http.Error(w, fmt.Sprintf("Failed to load song: %v", err), http.StatusInternalServerError)
		return nil, false
	}
	return song, true
}

// songFromForm validates the metadata form into a NewSong. Title is the only
// required field; artist and album stay NULL when blank, and duration falls
// back to 0 when absent.
func songFromForm(r *http.Request) (*model.NewSong, error) {
	title := strings.TrimSpace(r.PostFormValue("title"))
	if title == "" {
		return nil, errors.New("title must not be empty")
	}

	newSong := &model.NewSong{Title: title}

	if artist := strings.TrimSpace(r.PostFormValue("artist")); artist != "" {
		newSong.Artist = &artist
	}
	if album := strings.TrimSpace(r.PostFormValue("album")); album != "" {
		newSong.Album = &album
	}

	if durationStr := strings.TrimSpace(r.PostFormValue("duration")); durationStr != "" {
		duration, err := strconv.Atoi(durationStr)
		if err != nil || duration < 0 {
			return nil, fmt.Errorf("invalid duration %q", durationStr)
		}
		newSong.Duration = duration
	}

	return newSong, nil
}
