package cmd

import (
	"fmt"

	"chirp/db"

	"github.com/urfave/cli/v2"
)

func tidyCmd() *cli.Command {
	return &cli.Command{
		Name:  "tidy",
		Usage: "Tidy up the database",
		Description: `Tidy up the database by purging soft-deleted tweets.

		Removes tweets that were soft-deleted more than the retention
		window ago, together with their orphaned likes, bookmarks,
		hashtag links and mentions. Can be run as a cron job to keep the
		database size down.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Value:   "chirp.db",
				Usage:   "SQLite database file location",
				EnvVars: []string{"CHIRP_DATABASE"},
			},
			&cli.IntFlag{
				Name:    "retention-days",
				Value:   90,
				Usage:   "How long soft-deleted tweets are kept",
				EnvVars: []string{"CHIRP_RETENTION_DAYS"},
			},
		},
		Action: func(ctx *cli.Context) error {
			database := ctx.String("database")
			fmt.Println("Database configured: ", database)
			return db.Tidy(database, ctx.Int("retention-days"))
		},
	}
}
