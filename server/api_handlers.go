package server

import (
	"encoding/json"
	"net/http"

	"songshelf/logger"
	"songshelf/repository"
)

// APIHandler serves the JSON endpoints.
type APIHandler struct {
	repo repository.SongRepository
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(repo repository.SongRepository) *APIHandler {
	return &APIHandler{repo: repo}
}

// GetSongsHandler returns the full song catalog as JSON.
func (h *APIHandler) GetSongsHandler(w http.ResponseWriter, r *http.Request) {
	songs, err := h.repo.GetAllSongs()
	if err != nil {
		logger.Error("failed to list songs for API", logger.ErrorField(err))
		http.Error(w, "Failed to list songs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(songs); err != nil {
		logger.Error("failed to encode songs", logger.ErrorField(err))
	}
}
