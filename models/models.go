package models

import "time"

// TweetType mirrors the integer encoding used by API clients.
type TweetType int

const (
	TypeOriginal TweetType = iota
	TypeRetweet
	TypeComment
	TypeQuoteTweet
)

// Audience controls who may see a tweet.
type Audience int

const (
	AudienceEveryone Audience = iota
	AudienceCircle
)

// FeedSource selects which feed algorithm serves the request.
type FeedSource string

const (
	SourceForYou    FeedSource = "for-you"
	SourceFollowing FeedSource = "following"
)

// Tweet model with key fields from the tweet store
type Tweet struct {
	Id         int64     `json:"id"`
	AuthorId   int64     `json:"author_id"`
	Type       TweetType `json:"type"`
	Audience   Audience  `json:"audience"`
	Content    string    `json:"content"`
	ParentId   *int64    `json:"parent_id,omitempty"`
	GuestViews int64     `json:"guest_views"`
	UserViews  int64     `json:"user_views"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Deleted    bool      `json:"-"`
}

// Hashtag attached to a tweet during enrichment
type Hashtag struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

// UserSummary is the trimmed user representation used for mentions.
type UserSummary struct {
	Id       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// EnrichedTweet is a tweet plus the derived counts and per-requester
// flags attached by the enrichment stage.
type EnrichedTweet struct {
	Tweet
	Hashtags      []Hashtag     `json:"hashtags"`
	Mentions      []UserSummary `json:"mentions"`
	LikeCount     int64         `json:"like_count"`
	BookmarkCount int64         `json:"bookmark_count"`
	RetweetCount  int64         `json:"retweet_count"`
	CommentCount  int64         `json:"comment_count"`
	QuoteCount    int64         `json:"quote_count"`
	Liked         bool          `json:"liked"`
	Bookmarked    bool          `json:"bookmarked"`
	Reposted      bool          `json:"reposted"`
}

// ChildCounts aggregates a tweet's children by type. Computed, never
// stored.
type ChildCounts struct {
	Retweets int64
	Comments int64
	Quotes   int64
}

// ViewUpdate is the result of a view-counter increment.
type ViewUpdate struct {
	GuestViews int64
	UserViews  int64
	UpdatedAt  time.Time
}

// CandidateSource tags where a feed candidate came from.
type CandidateSource int

const (
	CandidateFollowed CandidateSource = iota
	CandidatePopular
)

// Candidate is a tweet under consideration for a feed page. Score is
// only meaningful for popularity-sourced candidates.
type Candidate struct {
	Tweet  Tweet
	Source CandidateSource
	Score  float64
}

// FeedPage is the response of a feed request. TotalItems is exact for
// the following feed and approximate for the for-you feed, see the
// composer notes.
type FeedPage struct {
	Tweets     []EnrichedTweet `json:"tweets"`
	TotalItems int64           `json:"total_items"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
}
