package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"songshelf/config"
	"songshelf/core/songmeta"
	"songshelf/db"
	"songshelf/logger"
	"songshelf/model"
	"songshelf/repository"
)

var importCmd = &cobra.Command{
	Use:   "import <files...>",
	Short: "Import audio files from disk into the catalog",
	Long: `Extract tags and duration from the given audio files and insert a song
record for each. Files that cannot be read are skipped. The files themselves
are left where they are; no copy is made into the upload directory.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.InitLogger(logger.Config{Level: cfg.LogLevel, OutputPath: cfg.LogPath})

		database, err := db.ConnectDB(cfg)
		if err != nil {
			logger.Fatal("failed to connect to database", logger.ErrorField(err))
		}
		defer database.Close()

		if err := db.InitDB(database); err != nil {
			logger.Fatal("failed to initialize database", logger.ErrorField(err))
		}

		repo := repository.NewMySQLSongRepository(database)

		for _, path := range args {
			meta, err := songmeta.Extract(path)
			if err != nil {
				fmt.Printf("Skipping %s: %v\n", path, err)
				continue
			}

			title := meta.Title
			if title == "" {
				title = filepath.Base(path)
			}

			newSong := &model.NewSong{
				Title:    title,
				Duration: meta.Duration,
			}
			if meta.Artist != "" {
				newSong.Artist = &meta.Artist
			}
			if meta.Album != "" {
				newSong.Album = &meta.Album
			}

			id, err := repo.CreateSong(newSong)
			if err != nil {
				logger.Fatal("failed to insert song", logger.String("path", path), logger.ErrorField(err))
			}

			fmt.Printf("Imported %s as song %d\n", path, id)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
