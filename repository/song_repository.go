package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"songshelf/model"
)

// ErrSongNotFound is returned when a lookup, update or delete targets an id
// that has no matching row. Callers must not conflate it with other database
// errors: it maps to a 404, everything else to a server-side failure.
var ErrSongNotFound = errors.New("song not found")

// SongRepository defines the interface for song data operations.
type SongRepository interface {
	CreateSong(song *model.NewSong) (int64, error)
	GetSongByID(id int64) (*model.Song, error)
	GetAllSongs() ([]*model.Song, error)
	UpdateSong(id int64, song *model.NewSong) error
	DeleteSong(id int64) error
}

// mysqlSongRepository implements SongRepository for MySQL.
type mysqlSongRepository struct {
	db *sql.DB
}

// NewMySQLSongRepository creates a new instance of mysqlSongRepository over
// the given connection pool.
func NewMySQLSongRepository(db *sql.DB) SongRepository {
	return &mysqlSongRepository{db: db}
}

// CreateSong adds a new song to the database and returns its assigned id.
// Timestamps are set server-side in the same statement; the id comes from
// the insert result itself, so concurrent inserts cannot observe each
// other's ids.
func (r *mysqlSongRepository) CreateSong(song *model.NewSong) (int64, error) {
	query := `INSERT INTO songs (title, artist, album, duration, filename, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, NOW(), NOW())`
	res, err := r.db.Exec(query, song.Title, song.Artist, song.Album, song.Duration, song.Filename)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateSong: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateSong: %w", err)
	}
	return id, nil
}

// GetSongByID retrieves a song by its ID. Non-positive ids can never match a
// row and report ErrSongNotFound like any other miss.
func (r *mysqlSongRepository) GetSongByID(id int64) (*model.Song, error) {
	if id <= 0 {
		return nil, ErrSongNotFound
	}

	query := `SELECT id, title, artist, album, duration, filename, created_at, updated_at
	           FROM songs WHERE id = ?`
	row := r.db.QueryRow(query, id)

	song := &model.Song{}
	err := row.Scan(&song.ID, &song.Title, &song.Artist, &song.Album, &song.Duration, &song.Filename, &song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSongNotFound
		}
		return nil, fmt.Errorf("failed to scan song by ID %d: %w", id, err)
	}
	return song, nil
}

// GetAllSongs retrieves every song from the database. The catalog is assumed
// to stay small, so there is no pagination.
func (r *mysqlSongRepository) GetAllSongs() ([]*model.Song, error) {
	query := `SELECT id, title, artist, album, duration, filename, created_at, updated_at
	           FROM songs`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := make([]*model.Song, 0)
	for rows.Next() {
		song := &model.Song{}
		err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.Album, &song.Duration, &song.Filename, &song.CreatedAt, &song.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song in GetAllSongs: %w", err)
		}
		songs = append(songs, song)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetAllSongs: %w", err)
	}

	return songs, nil
}

// UpdateSong overwrites title, artist, album and duration for the given id
// and refreshes updated_at. created_at and filename are left untouched.
// The DSN sets clientFoundRows, so RowsAffected counts matched rows and a
// zero count reliably means the row does not exist.
func (r *mysqlSongRepository) UpdateSong(id int64, song *model.NewSong) error {
	query := `UPDATE songs SET title = ?, artist = ?, album = ?, duration = ?, updated_at = NOW() WHERE id = ?`
	res, err := r.db.Exec(query, song.Title, song.Artist, song.Album, song.Duration, id)
	if err != nil {
		return fmt.Errorf("failed to execute UpdateSong for song ID %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for UpdateSong: %w", err)
	}
	if affected == 0 {
		return ErrSongNotFound
	}
	return nil
}

// DeleteSong removes the row for the given id. Deleting any backing file in
// the upload directory is the caller's responsibility.
func (r *mysqlSongRepository) DeleteSong(id int64) error {
	query := `DELETE FROM songs WHERE id = ?`
	res, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteSong for song ID %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for DeleteSong: %w", err)
	}
	if affected == 0 {
		return ErrSongNotFound
	}
	return nil
}
