package repository

// These tests run against a real MySQL database. Set SONGSHELF_TEST_DSN to a
// bare DSN like "user:pass@tcp(127.0.0.1:3306)/songshelf_test" (no query
// parameters; the required ones are appended here). The songs table is
// truncated before each test.

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"songshelf/db"
	"songshelf/model"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("SONGSHELF_TEST_DSN")
	if dsn == "" {
		t.Skip("SONGSHELF_TEST_DSN not set, skipping database tests")
	}

	database, err := sql.Open("mysql", dsn+"?parseTime=true&clientFoundRows=true")
	require.NoError(t, err)
	require.NoError(t, database.Ping())
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.InitDB(database))
	_, err = database.Exec("DELETE FROM songs")
	require.NoError(t, err)

	return database
}

func strPtr(s string) *string {
	return &s
}

func TestInsertThenFindRoundTrip(t *testing.T) {
	repo := NewMySQLSongRepository(testDB(t))

	newSong := &model.NewSong{
		Title:    "Atomyk Ebonpyre",
		Artist:   strPtr("Homestuck"),
		Album:    strPtr("Homestuck Vol. 1-4"),
		Duration: 249,
	}

	id, err := repo.CreateSong(newSong)
	require.NoError(t, err)
	assert.Positive(t, id)

	song, err := repo.GetSongByID(id)
	require.NoError(t, err)

	assert.Equal(t, id, song.ID)
	assert.Equal(t, "Atomyk Ebonpyre", song.Title)
	require.NotNil(t, song.Artist)
	assert.Equal(t, "Homestuck", *song.Artist)
	require.NotNil(t, song.Album)
	assert.Equal(t, "Homestuck Vol. 1-4", *song.Album)
	assert.Equal(t, 249, song.Duration)
	assert.Nil(t, song.Filename)
	assert.False(t, song.CreatedAt.IsZero())
	assert.Equal(t, song.CreatedAt, song.UpdatedAt)
}

func TestInsertPreservesNullFields(t *testing.T) {
	repo := NewMySQLSongRepository(testDB(t))

	id, err := repo.CreateSong(&model.NewSong{Title: "Untitled Demo"})
	require.NoError(t, err)

	song, err := repo.GetSongByID(id)
	require.NoError(t, err)
	assert.Nil(t, song.Artist)
	assert.Nil(t, song.Album)
	assert.Zero(t, song.Duration)
}

func TestFindMissingSong(t *testing.T) {
	repo := NewMySQLSongRepository(testDB(t))

	for _, id := range []int64{0, -1, 999999} {
		_, err := repo.GetSongByID(id)
		assert.ErrorIs(t, err, ErrSongNotFound, "id %d", id)
	}
}

func TestListingReflectsAllInserts(t *testing.T) {
	repo := NewMySQLSongRepository(testDB(t))

	newSong := &model.NewSong{
		Title:    "Set Theory",
		Artist:   strPtr("Carbon Based Patterns"),
		Album:    strPtr("World of Sleepers"),
		Duration: 300,
	}

	id1, err := repo.CreateSong(newSong)
	require.NoError(t, err)
	id2, err := repo.CreateSong(newSong)
	require.NoError(t, err)

	songs, err := repo.GetAllSongs()
	require.NoError(t, err)

	ids := make([]int64, 0, len(songs))
	for _, song := range songs {
		ids = append(ids, song.ID)
	}
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, id1)
	assert.Contains(t, ids, id2)
}

func TestUpdateOverwritesMetadataAndPreservesIdentity(t *testing.T) {
	repo := NewMySQLSongRepository(testDB(t))

	filename := "keepme.mp3"
	id, err := repo.CreateSong(&model.NewSong{
		Title:    "Before",
		Duration: 10,
		Filename: &filename,
	})
	require.NoError(t, err)

	before, err := repo.GetSongByID(id)
	require.NoError(t, err)

	// MySQL timestamps have second resolution; make sure NOW() moves.
	time.Sleep(1100 * time.Millisecond)

	err = repo.UpdateSong(id, &model.NewSong{
		Title:    "After",
		Artist:   strPtr("Somebody"),
		Duration: 42,
	})
	require.NoError(t, err)

	after, err := repo.GetSongByID(id)
	require.NoError(t, err)

	assert.Equal(t, "After", after.Title)
	require.NotNil(t, after.Artist)
	assert.Equal(t, "Somebody", *after.Artist)
	assert.Equal(t, 42, after.Duration)

	assert.Equal(t, before.CreatedAt, after.CreatedAt, "created_at must not change")
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt), "updated_at must increase")
	require.NotNil(t, after.Filename)
	assert.Equal(t, filename, *after.Filename, "filename must be preserved")
}

func TestUpdateMissingSong(t *testing.T) {
	repo := NewMySQLSongRepository(testDB(t))

	err := repo.UpdateSong(424242, &model.NewSong{Title: "Nobody Home"})
	assert.ErrorIs(t, err, ErrSongNotFound)
}

func TestDeleteIsTerminal(t *testing.T) {
	repo := NewMySQLSongRepository(testDB(t))

	id, err := repo.CreateSong(&model.NewSong{Title: "Doomed"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteSong(id))

	_, err = repo.GetSongByID(id)
	assert.ErrorIs(t, err, ErrSongNotFound)

	assert.ErrorIs(t, repo.DeleteSong(id), ErrSongNotFound)
}
