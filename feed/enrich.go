package feed

import (
	"context"
	"sync"

	"chirp/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// Enricher attaches hashtags, mentions, derived counts and
// per-viewer flags to composed tweets. Enrichment data is
// supplementary, a failed lookup degrades that field to empty instead
// of failing the page.
type Enricher struct {
	tweets    TweetStore
	likes     LikeStore
	bookmarks BookmarkStore

	// CountViewsOnRead controls whether single-tweet and thread
	// reads bump the view counters. Bulk feed listing never does,
	// regardless of this flag, to avoid write amplification under
	// scroll.
	CountViewsOnRead bool
}

func NewEnricher(tweets TweetStore, likes LikeStore, bookmarks BookmarkStore, countViewsOnRead bool) *Enricher {
	return &Enricher{
		tweets:           tweets,
		likes:            likes,
		bookmarks:        bookmarks,
		CountViewsOnRead: countViewsOnRead,
	}
}

// EnrichAll enriches a batch of tweets in one pass. The independent
// lookups run concurrently and join before the page is assembled.
func (e *Enricher) EnrichAll(ctx context.Context, tweets []models.Tweet, viewerId int64) []models.EnrichedTweet {
	if len(tweets) == 0 {
		return []models.EnrichedTweet{}
	}

	ids := lo.Map(tweets, func(t models.Tweet, _ int) int64 { return t.Id })

	var (
		hashtags       map[int64][]models.Hashtag
		mentions       map[int64][]models.UserSummary
		childCounts    map[int64]models.ChildCounts
		likeCounts     map[int64]int64
		bookmarkCounts map[int64]int64
		liked          map[int64]bool
		bookmarked     map[int64]bool
		reposted       map[int64]bool
	)

	type lookup struct {
		name string
		run  func() error
	}

	lookups := []lookup{
		{"hashtags", func() (err error) { hashtags, err = e.tweets.HashtagsFor(ctx, ids); return }},
		{"mentions", func() (err error) { mentions, err = e.tweets.MentionsFor(ctx, ids); return }},
		{"child counts", func() (err error) { childCounts, err = e.tweets.ChildCounts(ctx, ids); return }},
		{"like counts", func() (err error) { likeCounts, err = e.likes.LikeCounts(ctx, ids); return }},
		{"bookmark counts", func() (err error) { bookmarkCounts, err = e.bookmarks.BookmarkCounts(ctx, ids); return }},
	}
	if viewerId != Anonymous {
		lookups = append(lookups,
			lookup{"liked flags", func() (err error) { liked, err = e.likes.LikedBy(ctx, viewerId, ids); return }},
			lookup{"bookmarked flags", func() (err error) { bookmarked, err = e.bookmarks.BookmarkedBy(ctx, viewerId, ids); return }},
			lookup{"reposted flags", func() (err error) { reposted, err = e.tweets.RepostedBy(ctx, viewerId, ids); return }},
		)
	}

	var wg sync.WaitGroup
	wg.Add(len(lookups))
	for _, lookup := range lookups {
		lookup := lookup
		go func() {
			defer wg.Done()
			if err := lookup.run(); err != nil {
				log.WithFields(log.Fields{
					"lookup": lookup.name,
					"tweets": len(ids),
				}).Error("Enrichment lookup failed, degrading to empty ", err)
			}
		}()
	}
	wg.Wait()

	enriched := make([]models.EnrichedTweet, len(tweets))
	for i, tweet := range tweets {
		et := models.EnrichedTweet{
			Tweet:         tweet,
			Hashtags:      hashtags[tweet.Id],
			Mentions:      mentions[tweet.Id],
			LikeCount:     likeCounts[tweet.Id],
			BookmarkCount: bookmarkCounts[tweet.Id],
			Liked:         liked[tweet.Id],
			Bookmarked:    bookmarked[tweet.Id],
			Reposted:      reposted[tweet.Id],
		}
		if counts, ok := childCounts[tweet.Id]; ok {
			et.RetweetCount = counts.Retweets
			et.CommentCount = counts.Comments
			et.QuoteCount = counts.Quotes
		}
		if et.Hashtags == nil {
			et.Hashtags = []models.Hashtag{}
		}
		if et.Mentions == nil {
			et.Mentions = []models.UserSummary{}
		}
		enriched[i] = et
	}
	return enriched
}

// RecordView bumps the view counter for a single tweet read and
// mirrors the new counts onto the tweet. No-op when the policy flag
// is off. View failures only log, the read itself still succeeds.
func (e *Enricher) RecordView(ctx context.Context, tweet *models.Tweet, viewerId int64) {
	if !e.CountViewsOnRead {
		return
	}

	update, err := e.tweets.IncrementViews(ctx, tweet.Id, viewerId != Anonymous)
	if err != nil {
		log.WithFields(log.Fields{
			"tweet": tweet.Id,
		}).Error("Error incrementing views ", err)
		return
	}

	tweet.GuestViews = update.GuestViews
	tweet.UserViews = update.UserViews
	tweet.UpdatedAt = update.UpdatedAt
}

// RecordViews applies RecordView to a page of thread children.
func (e *Enricher) RecordViews(ctx context.Context, tweets []models.Tweet, viewerId int64) {
	if !e.CountViewsOnRead {
		return
	}
	for i := range tweets {
		e.RecordView(ctx, &tweets[i], viewerId)
	}
}
