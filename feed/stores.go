// Package feed builds personalized, paginated timelines from the
// stores that hold tweets, follow edges and engagement facts.
package feed

import (
	"context"
	"time"

	"chirp/models"
)

// FollowStore resolves the social graph.
type FollowStore interface {
	ListFollowed(ctx context.Context, userId int64) ([]int64, error)
}

// TweetStore serves tweet content, candidate queries, child
// aggregation and the view-counter write.
type TweetStore interface {
	TweetsByAuthors(ctx context.Context, authorIds []int64, types []models.TweetType, limit int) ([]models.Tweet, error)
	PopularTweets(ctx context.Context, excludeAuthors []int64, types []models.TweetType, since time.Time, limit int) ([]models.Candidate, error)
	GetTweet(ctx context.Context, id int64) (*models.Tweet, error)
	ChildrenPage(ctx context.Context, parentId int64, childType models.TweetType, offset, limit int) ([]models.Tweet, int64, error)
	ChildCounts(ctx context.Context, tweetIds []int64) (map[int64]models.ChildCounts, error)
	HashtagsFor(ctx context.Context, tweetIds []int64) (map[int64][]models.Hashtag, error)
	MentionsFor(ctx context.Context, tweetIds []int64) (map[int64][]models.UserSummary, error)
	RepostedBy(ctx context.Context, userId int64, tweetIds []int64) (map[int64]bool, error)
	IncrementViews(ctx context.Context, tweetId int64, authenticated bool) (*models.ViewUpdate, error)
}

// LikeStore serves like counts and per-user like flags.
type LikeStore interface {
	LikeCounts(ctx context.Context, tweetIds []int64) (map[int64]int64, error)
	LikedBy(ctx context.Context, userId int64, tweetIds []int64) (map[int64]bool, error)
}

// BookmarkStore serves bookmark counts and per-user bookmark flags.
type BookmarkStore interface {
	BookmarkCounts(ctx context.Context, tweetIds []int64) (map[int64]int64, error)
	BookmarkedBy(ctx context.Context, userId int64, tweetIds []int64) (map[int64]bool, error)
}

// UserStore resolves circle membership for audience checks.
type UserStore interface {
	CircleMemberships(ctx context.Context, userIds []int64) (map[int64][]int64, error)
}

// Stores bundles the collaborator interfaces the engine consumes.
type Stores struct {
	Follows   FollowStore
	Tweets    TweetStore
	Likes     LikeStore
	Bookmarks BookmarkStore
	Users     UserStore
}
