package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "chirp",
		Usage: "A social feed aggregation and ranking service",
		Description: `Chirp builds personalized, paginated timelines from followed-user
		tweets and algorithmically surfaced popular tweets.

		The feed is served over an HTTP API backed by an SQLite database.
		The following feed is strictly chronological; the for-you feed
		blends in engagement-ranked tweets from outside the follow graph
		under a quota policy.

		Flags can generally be set via environment variables, e.g.:

		--database => CHIRP_DATABASE=chirp.db
		--port => CHIRP_PORT=3000
		`,
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			rollbackCmd(),
			tidyCmd(),
			seedCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
