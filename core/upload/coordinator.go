// Package upload turns multipart form submissions into persisted song
// records. Each attached file is staged to the upload directory, run through
// the metadata extractor and inserted through the song repository; a file
// that cannot be extracted is skipped without aborting the rest of the batch.
package upload

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"songshelf/core/songmeta"
	"songshelf/logger"
	"songshelf/model"
	"songshelf/repository"
)

// audioExtension is the only upload extension accepted by the coordinator.
const audioExtension = ".mp3"

var (
	nonAlphaNumeric = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)
	multipleSpaces  = regexp.MustCompile(`\s+`)
)

// Coordinator orchestrates multi-file upload submissions.
type Coordinator struct {
	repo      repository.SongRepository
	uploadDir string
}

// NewCoordinator creates a coordinator storing staged files in uploadDir.
func NewCoordinator(repo repository.SongRepository, uploadDir string) *Coordinator {
	return &Coordinator{repo: repo, uploadDir: uploadDir}
}

// Result summarizes a processed submission. LastID is the id of the last
// successfully inserted song, 0 when nothing was inserted.
type Result struct {
	LastID   int64
	Inserted int
	Skipped  int
}

// ProcessUpload processes the attached files in submission order. Files with
// the wrong extension, staging failures and files the extractor rejects are
// skipped with a warning; a repository insert failure aborts the whole batch
// since the database being unavailable is not a per-file condition.
func (c *Coordinator) ProcessUpload(files []*multipart.FileHeader) (*Result, error) {
	result := &Result{}

	for _, fh := range files {
		name := SanitizeFilename(fh.Filename)
		if !strings.EqualFold(filepath.Ext(name), audioExtension) {
			logger.Warn("skipping upload with unsupported extension",
				logger.String("filename", fh.Filename))
			result.Skipped++
			continue
		}

		staged, err := c.stageFile(fh, name)
		if err != nil {
			logger.Warn("failed to stage uploaded file",
				logger.String("filename", fh.Filename),
				logger.ErrorField(err))
			result.Skipped++
			continue
		}
		stagedPath := filepath.Join(c.uploadDir, staged)

		meta, err := songmeta.Extract(stagedPath)
		if err != nil {
			logger.Warn("skipping unreadable audio file",
				logger.String("filename", staged),
				logger.ErrorField(err))
			// Remove the staged copy so failed uploads don't accumulate.
			os.Remove(stagedPath)
			result.Skipped++
			continue
		}

		title := meta.Title
		if title == "" {
			title = staged
		}

		newSong := &model.NewSong{
			Title:    title,
			Artist:   optional(meta.Artist),
			Album:    optional(meta.Album),
			Duration: meta.Duration,
			Filename: &staged,
		}

		id, err := c.repo.CreateSong(newSong)
		if err != nil {
			return nil, fmt.Errorf("failed to insert song for %s: %w", staged, err)
		}

		logger.Info("song imported",
			logger.Int64("songId", id),
			logger.String("title", title),
			logger.String("filename", staged))
		result.LastID = id
		result.Inserted++
	}

	return result, nil
}

// stageFile writes the upload's bytes fully to the upload directory and
// returns the final on-disk name. The bytes go to a temporary file first and
// are renamed into place, so a name is never visible half-written. When the
// target name already exists a short random suffix is appended; concurrent
// uploads of identically named files therefore get distinct files instead of
// overwriting each other.
func (c *Coordinator) stageFile(fh *multipart.FileHeader, name string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open multipart file: %w", err)
	}
	defer src.Close()

	tmpPath := filepath.Join(c.uploadDir, ".staging-"+uuid.NewString())
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close staging file: %w", err)
	}

	final := name
	if _, err := os.Stat(filepath.Join(c.uploadDir, final)); err == nil {
		ext := filepath.Ext(name)
		final = strings.TrimSuffix(name, ext) + "_" + generateUniqueSuffix() + ext
	}

	if err := os.Rename(tmpPath, filepath.Join(c.uploadDir, final)); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move staging file into place: %w", err)
	}

	return final, nil
}

// RemoveSongFile deletes the backing file of a destroyed song. The row is
// expected to be gone already: deleting the row first means a crash between
// the two steps leaves an orphaned file rather than a record pointing at
// nothing. A file that is already missing is not an error.
func (c *Coordinator) RemoveSongFile(filename string) error {
	if filename == "" || filename != filepath.Base(filename) {
		return fmt.Errorf("refusing to delete suspicious filename %q", filename)
	}

	if err := os.Remove(filepath.Join(c.uploadDir, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete song file %s: %w", filename, err)
	}
	return nil
}

// SanitizeFilename reduces a client-supplied filename to a safe local path
// component: path separators are stripped, whitespace runs collapse to a
// single underscore and anything outside a conservative character set is
// dropped.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = multipleSpaces.ReplaceAllString(base, "_")
	base = nonAlphaNumeric.ReplaceAllString(base, "")

	// Guard against names that sanitize away entirely (".." becomes "").
	base = strings.Trim(base, ".")
	if base == "" {
		base = "upload"
	}
	return base
}

func generateUniqueSuffix() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
