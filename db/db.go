package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chirp/models"
	"chirp/query"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// ErrNotFound is returned when a tweet does not exist or is soft-deleted.
var ErrNotFound = errors.New("tweet not found")

// DB handles all database operations with a shared connection pool
type DB struct {
	db *sql.DB
}

func NewDB(database string) (*DB, error) {
	db, err := connection(database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return &DB{db: db}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.db.Close()
}

// Social graph reads

// ListFollowed returns the ids of all users the given user follows.
// An empty result is valid, it just means the user follows no one.
func (db *DB) ListFollowed(ctx context.Context, userId int64) ([]int64, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("followed_id").From("follows").Where(sb.Equal("follower_id", userId))

	sql, args := sb.Build()
	rows, err := db.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CircleMemberships returns the circle member sets for the given
// users. Users without a circle are absent from the result map.
func (db *DB) CircleMemberships(ctx context.Context, userIds []int64) (map[int64][]int64, error) {
	memberships := make(map[int64][]int64)
	if len(userIds) == 0 {
		return memberships, nil
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("user_id", "member_id").From("circle_members").
		Where(sb.In("user_id", int64Args(userIds)...))

	sql, args := sb.Build()
	rows, err := db.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userId, memberId int64
		if err := rows.Scan(&userId, &memberId); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		memberships[userId] = append(memberships[userId], memberId)
	}
	return memberships, rows.Err()
}

// Candidate source reads

// TweetsByAuthors returns tweets authored by the given users, newest
// first with id as tiebreak. A limit of 0 means no limit.
func (db *DB) TweetsByAuthors(ctx context.Context, authorIds []int64, types []models.TweetType, limit int) ([]models.Tweet, error) {
	if len(authorIds) == 0 {
		return nil, nil
	}

	qb := query.NewCandidateQueryBuilder()
	qb.AddFilter(&query.NotDeletedFilter{})
	qb.AddFilter(&query.AuthorFilter{AuthorIds: authorIds})
	qb.AddFilter(&query.TypeFilter{Types: types})

	sql, args := qb.Build(limit)
	log.WithFields(log.Fields{
		"authors": len(authorIds),
		"limit":   limit,
	}).Debug("Fetching tweets by authors")

	rows, err := db.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var tweets []models.Tweet
	for rows.Next() {
		tweet, err := scanTweet(rows)
		if err != nil {
			return nil, err
		}
		tweets = append(tweets, tweet)
	}
	return tweets, rows.Err()
}

// PopularTweets returns engagement-ranked tweets by authors outside
// the excluded set, created within the recency window. The score is
// computed in SQL from current like and retweet counts.
func (db *DB) PopularTweets(ctx context.Context, excludeAuthors []int64, types []models.TweetType, since time.Time, limit int) ([]models.Candidate, error) {
	qb := query.NewCandidateQueryBuilder()
	qb.AddScoringLayer(&query.EngagementScoring{}, 1.0)
	qb.AddFilter(&query.NotDeletedFilter{})
	qb.AddFilter(&query.ExcludeAuthorFilter{AuthorIds: excludeAuthors})
	qb.AddFilter(&query.TypeFilter{Types: types})
	qb.AddFilter(&query.SinceFilter{Since: since})

	sql, args := qb.Build(limit)
	log.WithFields(log.Fields{
		"excluded": len(excludeAuthors),
		"since":    since.Format(time.RFC3339),
		"limit":    limit,
	}).Debug("Fetching popular tweets")

	rows, err := db.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		candidate, err := scanScoredTweet(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	return candidates, rows.Err()
}

// Single tweet and thread reads

func (db *DB) GetTweet(ctx context.Context, id int64) (*models.Tweet, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(query.TweetColumns...).From("tweets").
		Where(sb.Equal("tweets.id", id), sb.Equal("tweets.deleted", 0))

	sqlStr, args := sb.Build()
	row := db.db.QueryRowContext(ctx, sqlStr, args...)

	tweet, err := scanTweet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

// ChildrenPage returns one page of a tweet's children of the given
// type plus the exact total count.
func (db *DB) ChildrenPage(ctx context.Context, parentId int64, childType models.TweetType, offset, limit int) ([]models.Tweet, int64, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(query.TweetColumns...).From("tweets").
		Where(
			sb.Equal("tweets.parent_id", parentId),
			sb.Equal("tweets.type", int(childType)),
			sb.Equal("tweets.deleted", 0),
		).
		OrderBy("tweets.created_at DESC", "tweets.id DESC").
		Limit(limit).Offset(offset)

	sqlStr, args := sb.Build()
	rows, err := db.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var tweets []models.Tweet
	for rows.Next() {
		tweet, err := scanTweet(rows)
		if err != nil {
			return nil, 0, err
		}
		tweets = append(tweets, tweet)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	err = db.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tweets WHERE parent_id = ? AND type = ? AND deleted = 0",
		parentId, int(childType),
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count error: %w", err)
	}

	return tweets, total, nil
}

// IncrementViews atomically bumps the guest or user view counter and
// touches updated_at. The increment happens in SQL so concurrent
// readers never lose updates.
func (db *DB) IncrementViews(ctx context.Context, tweetId int64, authenticated bool) (*models.ViewUpdate, error) {
	column := "guest_views"
	if authenticated {
		column = "user_views"
	}

	now := time.Now()
	res, err := db.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE tweets SET %s = %s + 1, updated_at = ? WHERE id = ? AND deleted = 0", column, column),
		now.Unix(), tweetId,
	)
	if err != nil {
		return nil, fmt.Errorf("update error: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrNotFound
	}

	var update models.ViewUpdate
	var updatedAt int64
	err = db.db.QueryRowContext(ctx,
		"SELECT guest_views, user_views, updated_at FROM tweets WHERE id = ?",
		tweetId,
	).Scan(&update.GuestViews, &update.UserViews, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	update.UpdatedAt = time.Unix(updatedAt, 0)

	return &update, nil
}

// Enrichment reads, all batched over the page's tweet ids

func (db *DB) HashtagsFor(ctx context.Context, tweetIds []int64) (map[int64][]models.Hashtag, error) {
	result := make(map[int64][]models.Hashtag)
	if len(tweetIds) == 0 {
		return result, nil
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("tweet_hashtags.tweet_id", "hashtags.id", "hashtags.name").
		From("tweet_hashtags").
		Join("hashtags", "hashtags.id = tweet_hashtags.hashtag_id").
		Where(sb.In("tweet_hashtags.tweet_id", int64Args(tweetIds)...))

	sql, args := sb.Build()
	rows, err := db.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tweetId int64
		var tag models.Hashtag
		if err := rows.Scan(&tweetId, &tag.Id, &tag.Name); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result[tweetId] = append(result[tweetId], tag)
	}
	return result, rows.Err()
}

func (db *DB) MentionsFor(ctx context.Context, tweetIds []int64) (map[int64][]models.UserSummary, error) {
	result := make(map[int64][]models.UserSummary)
	if len(tweetIds) == 0 {
		return result, nil
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("tweet_mentions.tweet_id", "users.id", "users.username", "users.name").
		From("tweet_mentions").
		Join("users", "users.id = tweet_mentions.user_id").
		Where(sb.In("tweet_mentions.tweet_id", int64Args(tweetIds)...))

	sql, args := sb.Build()
	rows, err := db.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tweetId int64
		var user models.UserSummary
		if err := rows.Scan(&tweetId, &user.Id, &user.Username, &user.Name); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result[tweetId] = append(result[tweetId], user)
	}
	return result, rows.Err()
}

// ChildCounts returns the retweet, comment and quote counts for each
// tweet, derived from the parent relationship. Soft-deleted children
// never count.
func (db *DB) ChildCounts(ctx context.Context, tweetIds []int64) (map[int64]models.ChildCounts, error) {
	result := make(map[int64]models.ChildCounts)
	if len(tweetIds) == 0 {
		return result, nil
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("parent_id", "type", "COUNT(*)").From("tweets").
		Where(
			sb.In("parent_id", int64Args(tweetIds)...),
			sb.Equal("deleted", 0),
		).
		GroupBy("parent_id", "type")

	sql, args := sb.Build()
	rows, err := db.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var parentId int64
		var childType models.TweetType
		var count int64
		if err := rows.Scan(&parentId, &childType, &count); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		counts := result[parentId]
		switch childType {
		case models.TypeRetweet:
			counts.Retweets = count
		case models.TypeComment:
			counts.Comments = count
		case models.TypeQuoteTweet:
			counts.Quotes = count
		}
		result[parentId] = counts
	}
	return result, rows.Err()
}

func (db *DB) LikeCounts(ctx context.Context, tweetIds []int64) (map[int64]int64, error) {
	return db.engagementCounts(ctx, "likes", tweetIds)
}

func (db *DB) BookmarkCounts(ctx context.Context, tweetIds []int64) (map[int64]int64, error) {
	return db.engagementCounts(ctx, "bookmarks", tweetIds)
}

func (db *DB) engagementCounts(ctx context.Context, table string, tweetIds []int64) (map[int64]int64, error) {
	result := make(map[int64]int64)
	if len(tweetIds) == 0 {
		return result, nil
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("tweet_id", "COUNT(*)").From(table).
		Where(sb.In("tweet_id", int64Args(tweetIds)...)).
		GroupBy("tweet_id")

	sql, args := sb.Build()
	rows, err := db.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tweetId, count int64
		if err := rows.Scan(&tweetId, &count); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result[tweetId] = count
	}
	return result, rows.Err()
}

func (db *DB) LikedBy(ctx context.Context, userId int64, tweetIds []int64) (map[int64]bool, error) {
	return db.engagementFlags(ctx, "likes", userId, tweetIds)
}

func (db *DB) BookmarkedBy(ctx context.Context, userId int64, tweetIds []int64) (map[int64]bool, error) {
	return db.engagementFlags(ctx, "bookmarks", userId, tweetIds)
}

func (db *DB) engagementFlags(ctx context.Context, table string, userId int64, tweetIds []int64) (map[int64]bool, error) {
	result := make(map[int64]bool)
	if len(tweetIds) == 0 {
		return result, nil
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("tweet_id").From(table).
		Where(
			sb.Equal("user_id", userId),
			sb.In("tweet_id", int64Args(tweetIds)...),
		)

	sql, args := sb.Build()
	rows, err := db.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tweetId int64
		if err := rows.Scan(&tweetId); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result[tweetId] = true
	}
	return result, rows.Err()
}

// RepostedBy reports, per tweet, whether the user authored a retweet
// or quote child of it.
func (db *DB) RepostedBy(ctx context.Context, userId int64, tweetIds []int64) (map[int64]bool, error) {
	result := make(map[int64]bool)
	if len(tweetIds) == 0 {
		return result, nil
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("DISTINCT parent_id").From("tweets").
		Where(
			sb.Equal("author_id", userId),
			sb.In("parent_id", int64Args(tweetIds)...),
			sb.In("type", int(models.TypeRetweet), int(models.TypeQuoteTweet)),
			sb.Equal("deleted", 0),
		)

	sql, args := sb.Build()
	rows, err := db.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var parentId int64
		if err := rows.Scan(&parentId); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result[parentId] = true
	}
	return result, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTweet(row scanner) (models.Tweet, error) {
	var tweet models.Tweet
	var parentId sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(
		&tweet.Id, &tweet.AuthorId, &tweet.Type, &tweet.Audience,
		&tweet.Content, &parentId, &tweet.GuestViews, &tweet.UserViews,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return tweet, fmt.Errorf("scan error: %w", err)
	}

	if parentId.Valid {
		tweet.ParentId = &parentId.Int64
	}
	tweet.CreatedAt = time.Unix(createdAt, 0)
	tweet.UpdatedAt = time.Unix(updatedAt, 0)
	return tweet, nil
}

func scanScoredTweet(rows *sql.Rows) (models.Candidate, error) {
	var candidate models.Candidate
	var parentId sql.NullInt64
	var createdAt, updatedAt int64

	err := rows.Scan(
		&candidate.Tweet.Id, &candidate.Tweet.AuthorId, &candidate.Tweet.Type,
		&candidate.Tweet.Audience, &candidate.Tweet.Content, &parentId,
		&candidate.Tweet.GuestViews, &candidate.Tweet.UserViews,
		&createdAt, &updatedAt, &candidate.Score,
	)
	if err != nil {
		return candidate, fmt.Errorf("scan error: %w", err)
	}

	if parentId.Valid {
		candidate.Tweet.ParentId = &parentId.Int64
	}
	candidate.Tweet.CreatedAt = time.Unix(createdAt, 0)
	candidate.Tweet.UpdatedAt = time.Unix(updatedAt, 0)
	candidate.Source = models.CandidatePopular
	return candidate, nil
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
