package cmd

import (
	"songshelf/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the songshelf HTTP server",
	Long:  `Start the HTTP server serving the song catalog pages, uploads and the JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
