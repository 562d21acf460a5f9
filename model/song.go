package model

import "time"

// Song represents a cataloged song as stored in the database.
type Song struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Artist    *string   `json:"artist,omitempty"`
	Album     *string   `json:"album,omitempty"`
	Duration  int       `json:"duration"`           // Duration in seconds, 0 when unknown
	Filename  *string   `json:"filename,omitempty"` // Name of the backing upload, relative to the upload dir
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSong carries the writable fields of a song into insert and update
// operations. The store assigns id and timestamps.
type NewSong struct {
	Title    string  `json:"title"`
	Artist   *string `json:"artist,omitempty"`
	Album    *string `json:"album,omitempty"`
	Duration int     `json:"duration"`
	Filename *string `json:"filename,omitempty"`
}
