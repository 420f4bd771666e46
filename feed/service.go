package feed

import (
	"context"
	"errors"
	"time"

	"chirp/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// Validation and visibility errors, rejected before any store access.
var (
	ErrInvalidPage   = errors.New("page must be 1 or greater")
	ErrInvalidLimit  = errors.New("limit must be between 1 and 100")
	ErrInvalidSource = errors.New("source must be for-you or following")
	ErrNotVisible    = errors.New("tweet not visible to requester")
)

const (
	maxLimit = 100
)

// Options tunes the composition policy. Zero values fall back to the
// shipped product defaults.
type Options struct {
	// PopularShare is the fraction of each for-you page reserved for
	// popularity-sourced tweets.
	PopularShare float64
	// PopularWindow is the recency window for popularity candidates.
	PopularWindow time.Duration
	// OverfetchFactor scales how much of each source is fetched per
	// for-you page before composition.
	OverfetchFactor int
	// CountViewsOnRead gates the view-counter side effect on tweet
	// and thread reads.
	CountViewsOnRead bool
}

// Service is the feed orchestrator. It is stateless across requests,
// constructed once per process, and safe for concurrent use.
type Service struct {
	stores        Stores
	enricher      *Enricher
	popularShare  float64
	popularWindow time.Duration
	overfetch     int
}

func NewService(stores Stores, opts Options) *Service {
	if opts.PopularShare <= 0 {
		opts.PopularShare = 0.3
	}
	if opts.PopularWindow <= 0 {
		opts.PopularWindow = 72 * time.Hour
	}
	if opts.OverfetchFactor < 3 {
		opts.OverfetchFactor = 3
	}

	return &Service{
		stores:        stores,
		enricher:      NewEnricher(stores.Tweets, stores.Likes, stores.Bookmarks, opts.CountViewsOnRead),
		popularShare:  opts.PopularShare,
		popularWindow: opts.PopularWindow,
		overfetch:     opts.OverfetchFactor,
	}
}

// FeedRequest is one feed page request. UserId may be Anonymous.
type FeedRequest struct {
	UserId int64
	Page   int
	Limit  int
	Source models.FeedSource
}

// GetFeed builds one feed page. TotalItems is exact for the
// following feed; for the for-you feed it is the size of the
// candidate pool available at request time and must be treated as
// approximate.
func (s *Service) GetFeed(ctx context.Context, req FeedRequest) (*models.FeedPage, error) {
	if err := validatePaging(req.Page, req.Limit); err != nil {
		return nil, err
	}
	if req.Source != models.SourceForYou && req.Source != models.SourceFollowing {
		return nil, ErrInvalidSource
	}

	start := time.Now()

	followed, err := s.followedIds(ctx, req.UserId)
	if err != nil {
		return nil, err
	}

	var page []models.Candidate
	var totalItems int64

	switch req.Source {
	case models.SourceFollowing:
		page, totalItems, err = s.followingFeed(ctx, req, followed)
	case models.SourceForYou:
		page, totalItems, err = s.forYouFeed(ctx, req, followed)
	}
	if err != nil {
		return nil, err
	}

	tweets := lo.Map(page, func(c models.Candidate, _ int) models.Tweet { return c.Tweet })

	// Bulk listing never counts views, only the enrichment reads run.
	enriched := s.enricher.EnrichAll(ctx, tweets, req.UserId)

	log.WithFields(log.Fields{
		"user":    req.UserId,
		"source":  req.Source,
		"page":    req.Page,
		"limit":   req.Limit,
		"tweets":  len(enriched),
		"latency": time.Since(start),
	}).Info("Built feed page")

	return &models.FeedPage{
		Tweets:     enriched,
		TotalItems: totalItems,
		Page:       req.Page,
		Limit:      req.Limit,
	}, nil
}

// followingFeed is the chronological mode: every audience-visible
// tweet from the followed set, paged by offset with an exact total.
func (s *Service) followingFeed(ctx context.Context, req FeedRequest, followed []int64) ([]models.Candidate, int64, error) {
	candidates, err := s.fetchFollowing(ctx, followed, 0)
	if err != nil {
		return nil, 0, err
	}

	candidates, err = s.filterVisible(ctx, candidates, req.UserId)
	if err != nil {
		return nil, 0, err
	}

	return composeFollowing(candidates, req.Page, req.Limit), int64(len(candidates)), nil
}

// forYouFeed is the blended mode: a popularity block followed by a
// chronological block under the quota policy. The candidate pool is
// fetched fresh per request so page-to-page consistency is not
// strictly guaranteed, an accepted tradeoff for a live feed.
func (s *Service) forYouFeed(ctx context.Context, req FeedRequest, followed []int64) ([]models.Candidate, int64, error) {
	// Overfetch enough of both sources to compose every page up to
	// the requested one.
	limitEach := req.Limit * s.overfetch * req.Page

	following, popular, err := s.fetchSources(ctx, followed, limitEach)
	if err != nil {
		return nil, 0, err
	}

	if following, err = s.filterVisible(ctx, following, req.UserId); err != nil {
		return nil, 0, err
	}
	if popular, err = s.filterVisible(ctx, popular, req.UserId); err != nil {
		return nil, 0, err
	}

	page := composeForYou(following, popular, req.Page, req.Limit, s.popularShare)

	// The two sources are disjoint by author so the union count is
	// the plain sum. Approximate by design, see the API docs.
	totalItems := int64(len(following) + len(popular))

	return page, totalItems, nil
}

// GetTweet reads a single tweet with enrichment. Counts a view when
// the policy flag allows it.
func (s *Service) GetTweet(ctx context.Context, tweetId, viewerId int64) (*models.EnrichedTweet, error) {
	tweet, err := s.stores.Tweets.GetTweet(ctx, tweetId)
	if err != nil {
		return nil, err
	}

	ok, err := s.checkVisible(ctx, *tweet, viewerId)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotVisible
	}

	s.enricher.RecordView(ctx, tweet, viewerId)

	enriched := s.enricher.EnrichAll(ctx, []models.Tweet{*tweet}, viewerId)
	return &enriched[0], nil
}

// ChildrenRequest is one thread-children page request.
type ChildrenRequest struct {
	TweetId   int64
	ChildType models.TweetType
	UserId    int64
	Page      int
	Limit     int
}

// GetTweetChildren reads one page of a tweet's children of the given
// type, enriched, with an exact total. Children views are counted
// per the policy flag, matching the original product behaviour where
// thread reads count but bulk feed listing does not.
func (s *Service) GetTweetChildren(ctx context.Context, req ChildrenRequest) (*models.FeedPage, error) {
	if err := validatePaging(req.Page, req.Limit); err != nil {
		return nil, err
	}

	parent, err := s.stores.Tweets.GetTweet(ctx, req.TweetId)
	if err != nil {
		return nil, err
	}

	ok, err := s.checkVisible(ctx, *parent, req.UserId)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotVisible
	}

	offset := (req.Page - 1) * req.Limit
	children, total, err := s.stores.Tweets.ChildrenPage(ctx, req.TweetId, req.ChildType, offset, req.Limit)
	if err != nil {
		return nil, err
	}

	s.enricher.RecordViews(ctx, children, req.UserId)

	return &models.FeedPage{
		Tweets:     s.enricher.EnrichAll(ctx, children, req.UserId),
		TotalItems: total,
		Page:       req.Page,
		Limit:      req.Limit,
	}, nil
}

func validatePaging(page, limit int) error {
	if page < 1 {
		return ErrInvalidPage
	}
	if limit < 1 || limit > maxLimit {
		return ErrInvalidLimit
	}
	return nil
}
