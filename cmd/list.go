package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"songshelf/config"
	"songshelf/db"
	"songshelf/logger"
	"songshelf/repository"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the song catalog",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.InitLogger(logger.Config{Level: cfg.LogLevel, OutputPath: cfg.LogPath})

		database, err := db.ConnectDB(cfg)
		if err != nil {
			logger.Fatal("failed to connect to database", logger.ErrorField(err))
		}
		defer database.Close()

		repo := repository.NewMySQLSongRepository(database)
		songs, err := repo.GetAllSongs()
		if err != nil {
			logger.Fatal("failed to list songs", logger.ErrorField(err))
		}

		fmt.Printf("Displaying %d songs\n", len(songs))
		for _, song := range songs {
			artist := "<Unknown>"
			if song.Artist != nil {
				artist = *song.Artist
			}
			fmt.Printf("%d: %s - %s (%ds)\n", song.ID, artist, song.Title, song.Duration)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
