package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"chirp/config"
	"chirp/db"
	"chirp/feed"
	"chirp/server"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the chirp feed API",
		Description: `Starts the chirp feed HTTP server.

Runs database migrations, opens the SQLite database and serves the
news feed, single tweet and tweet children endpoints, plus health and
prometheus metrics.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML configuration file location",
				EnvVars: []string{"CHIRP_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "SQLite database file location",
				EnvVars: []string{"CHIRP_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "hostname",
				Usage:   "Hostname to serve on",
				EnvVars: []string{"CHIRP_HOSTNAME"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to serve on",
				EnvVars: []string{"CHIRP_PORT"},
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.LoadConfig(ctx.String("config"))
			if err != nil {
				return err
			}
			if ctx.String("database") != "" {
				cfg.Database.Path = ctx.String("database")
			}
			if ctx.String("hostname") != "" {
				cfg.Server.Hostname = ctx.String("hostname")
			}
			if ctx.Int("port") != 0 {
				cfg.Server.Port = ctx.Int("port")
			}

			fmt.Println("Starting chirp...")

			if err := db.Migrate(cfg.Database.Path); err != nil {
				return err
			}

			database, err := db.NewDB(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer database.Close()

			// Wait for the database to come up before serving
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			b.MaxElapsedTime = 30 * time.Second
			if err := backoff.Retry(func() error {
				return database.Ping(ctx.Context)
			}, b); err != nil {
				return fmt.Errorf("database not reachable: %w", err)
			}

			feeds := feed.NewService(feed.Stores{
				Follows:   database,
				Tweets:    database,
				Likes:     database,
				Bookmarks: database,
				Users:     database,
			}, feed.Options{
				PopularShare:     cfg.Feed.PopularShare,
				PopularWindow:    cfg.Feed.PopularWindow(),
				OverfetchFactor:  cfg.Feed.OverfetchFactor,
				CountViewsOnRead: cfg.Enrichment.CountViewsOnRead,
			})

			app := server.Server(&server.ServerConfig{
				Feeds: feeds,
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			go func() {
				<-c
				fmt.Println("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
					log.Error("Error shutting down server ", err)
				}
			}()

			fmt.Printf("Starting server on %s:%d...\n", cfg.Server.Hostname, cfg.Server.Port)
			return app.Listen(fmt.Sprintf(":%d", cfg.Server.Port))
		},
	}
}
