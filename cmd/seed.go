package cmd

import (
	"context"
	"fmt"
	"time"

	"chirp/db"
	"chirp/models"

	"github.com/urfave/cli/v2"
)

func seedCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load a small demo dataset",
		Description: `Loads a handful of users, follows, tweets and engagement into
		the database for local development. Run migrate first.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Value:   "chirp.db",
				Usage:   "SQLite database file location",
				EnvVars: []string{"CHIRP_DATABASE"},
			},
		},
		Action: func(cliCtx *cli.Context) error {
			database, err := db.NewDB(cliCtx.String("database"))
			if err != nil {
				return err
			}
			defer database.Close()

			return seed(cliCtx.Context, database)
		},
	}
}

func seed(ctx context.Context, database *db.DB) error {
	users := []struct{ username, name string }{
		{"ada", "Ada Lovelace"},
		{"grace", "Grace Hopper"},
		{"linus", "Linus Torvalds"},
		{"margaret", "Margaret Hamilton"},
	}

	ids := make([]int64, 0, len(users))
	for _, u := range users {
		id, err := database.CreateUser(ctx, u.username, u.name)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	ada, grace, linus, margaret := ids[0], ids[1], ids[2], ids[3]

	// ada follows grace, grace follows ada and linus
	for _, edge := range [][2]int64{{ada, grace}, {grace, ada}, {grace, linus}} {
		if err := database.Follow(ctx, edge[0], edge[1]); err != nil {
			return err
		}
	}

	// margaret's circle contains ada only
	if err := database.AddCircleMember(ctx, margaret, ada); err != nil {
		return err
	}

	now := time.Now()
	tweets := []models.Tweet{
		{AuthorId: grace, Type: models.TypeOriginal, Content: "Compilers are just programs", CreatedAt: now.Add(-4 * time.Hour)},
		{AuthorId: linus, Type: models.TypeOriginal, Content: "Talk is cheap, show me the code", CreatedAt: now.Add(-3 * time.Hour)},
		{AuthorId: ada, Type: models.TypeOriginal, Content: "Notes on the analytical engine", CreatedAt: now.Add(-2 * time.Hour)},
		{AuthorId: margaret, Type: models.TypeOriginal, Audience: models.AudienceCircle, Content: "Circle only: onboard software musings", CreatedAt: now.Add(-1 * time.Hour)},
	}

	tweetIds := make([]int64, 0, len(tweets))
	for _, t := range tweets {
		id, err := database.CreateTweet(ctx, t)
		if err != nil {
			return err
		}
		tweetIds = append(tweetIds, id)
	}

	// Engagement so the for-you feed has something to rank
	if err := database.LikeTweet(ctx, ada, tweetIds[1]); err != nil {
		return err
	}
	if err := database.LikeTweet(ctx, grace, tweetIds[1]); err != nil {
		return err
	}
	if err := database.BookmarkTweet(ctx, ada, tweetIds[0]); err != nil {
		return err
	}
	if err := database.TagHashtag(ctx, tweetIds[2], "computing"); err != nil {
		return err
	}
	if err := database.MentionUser(ctx, tweetIds[0], ada); err != nil {
		return err
	}

	fmt.Println("Seeded demo data")
	return nil
}
