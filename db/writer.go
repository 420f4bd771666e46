package db

import (
	"context"
	"fmt"
	"time"

	"chirp/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// Write operations. The feed engine itself only writes view counters
// (see IncrementViews), everything below serves seeding, tests and
// the surrounding system.

func (db *DB) CreateUser(ctx context.Context, username, name string) (int64, error) {
	insert := sqlbuilder.SQLite.NewInsertBuilder()
	sql, args := insert.InsertInto("users").Cols("username", "name").Values(username, name).Build()

	res, err := db.db.ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("insert error: %w", err)
	}
	return res.LastInsertId()
}

func (db *DB) AddCircleMember(ctx context.Context, userId, memberId int64) error {
	insert := sqlbuilder.SQLite.NewInsertBuilder()
	sql, args := insert.InsertInto("circle_members").Cols("user_id", "member_id").Values(userId, memberId).Build()

	_, err := db.db.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert error: %w", err)
	}
	return nil
}

func (db *DB) Follow(ctx context.Context, followerId, followedId int64) error {
	insert := sqlbuilder.SQLite.NewInsertBuilder()
	sql, args := insert.InsertInto("follows").Cols("follower_id", "followed_id", "created_at").
		Values(followerId, followedId, time.Now().Unix()).Build()

	_, err := db.db.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert error: %w", err)
	}
	return nil
}

func (db *DB) CreateTweet(ctx context.Context, tweet models.Tweet) (int64, error) {
	log.WithFields(log.Fields{
		"author": tweet.AuthorId,
		"type":   tweet.Type,
	}).Debug("Creating tweet")

	createdAt := tweet.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var parentId interface{}
	if tweet.ParentId != nil {
		parentId = *tweet.ParentId
	}

	insert := sqlbuilder.SQLite.NewInsertBuilder()
	sql, args := insert.InsertInto("tweets").
		Cols("author_id", "type", "audience", "content", "parent_id", "created_at", "updated_at").
		Values(tweet.AuthorId, int(tweet.Type), int(tweet.Audience), tweet.Content, parentId, createdAt.Unix(), createdAt.Unix()).
		Build()

	res, err := db.db.ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("insert error: %w", err)
	}
	return res.LastInsertId()
}

func (db *DB) SoftDeleteTweet(ctx context.Context, tweetId int64) error {
	_, err := db.db.ExecContext(ctx,
		"UPDATE tweets SET deleted = 1, updated_at = ? WHERE id = ?",
		time.Now().Unix(), tweetId,
	)
	if err != nil {
		return fmt.Errorf("update error: %w", err)
	}
	return nil
}

func (db *DB) LikeTweet(ctx context.Context, userId, tweetId int64) error {
	return db.addEngagement(ctx, "likes", userId, tweetId)
}

func (db *DB) BookmarkTweet(ctx context.Context, userId, tweetId int64) error {
	return db.addEngagement(ctx, "bookmarks", userId, tweetId)
}

func (db *DB) addEngagement(ctx context.Context, table string, userId, tweetId int64) error {
	insert := sqlbuilder.SQLite.NewInsertBuilder()
	sql, args := insert.InsertInto(table).Cols("user_id", "tweet_id", "created_at").
		Values(userId, tweetId, time.Now().Unix()).Build()

	_, err := db.db.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert error: %w", err)
	}
	return nil
}

// TagHashtag links a hashtag to a tweet, creating the hashtag row on
// first use.
func (db *DB) TagHashtag(ctx context.Context, tweetId int64, name string) error {
	if _, err := db.db.ExecContext(ctx,
		"INSERT INTO hashtags (name) VALUES (?) ON CONFLICT (name) DO NOTHING", name,
	); err != nil {
		return fmt.Errorf("insert error: %w", err)
	}

	_, err := db.db.ExecContext(ctx,
		"INSERT INTO tweet_hashtags (tweet_id, hashtag_id) SELECT ?, id FROM hashtags WHERE name = ?",
		tweetId, name,
	)
	if err != nil {
		return fmt.Errorf("insert error: %w", err)
	}
	return nil
}

func (db *DB) MentionUser(ctx context.Context, tweetId, userId int64) error {
	insert := sqlbuilder.SQLite.NewInsertBuilder()
	sql, args := insert.InsertInto("tweet_mentions").Cols("tweet_id", "user_id").Values(tweetId, userId).Build()

	_, err := db.db.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert error: %w", err)
	}
	return nil
}
