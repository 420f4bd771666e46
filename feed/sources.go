package feed

import (
	"context"
	"sync"
	"time"

	"chirp/models"

	"github.com/samber/lo"
)

// Tweet types eligible per source. Comments never surface in feeds,
// they live in threads.
var (
	followingTypes = []models.TweetType{models.TypeOriginal, models.TypeQuoteTweet, models.TypeRetweet}
	popularTypes   = []models.TweetType{models.TypeOriginal, models.TypeQuoteTweet}
)

// fetchFollowing returns candidates authored by the followed set,
// newest first. A limit of 0 fetches everything, truncation is the
// composer's job.
func (s *Service) fetchFollowing(ctx context.Context, authorIds []int64, limit int) ([]models.Candidate, error) {
	tweets, err := s.stores.Tweets.TweetsByAuthors(ctx, authorIds, followingTypes, limit)
	if err != nil {
		return nil, err
	}

	return lo.Map(tweets, func(t models.Tweet, _ int) models.Candidate {
		return models.Candidate{Tweet: t, Source: models.CandidateFollowed}
	}), nil
}

// fetchPopular returns engagement-ranked candidates by authors the
// user does not follow, restricted to the recency window.
func (s *Service) fetchPopular(ctx context.Context, excludeAuthors []int64, limit int) ([]models.Candidate, error) {
	since := time.Now().Add(-s.popularWindow)
	return s.stores.Tweets.PopularTweets(ctx, excludeAuthors, popularTypes, since, limit)
}

// fetchSources issues the two candidate fetches concurrently. Both
// are mandatory, either failure fails the request rather than
// silently degrading composition.
func (s *Service) fetchSources(ctx context.Context, followed []int64, limitEach int) (following, popular []models.Candidate, err error) {
	var wg sync.WaitGroup
	var followingErr, popularErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		following, followingErr = s.fetchFollowing(ctx, followed, limitEach)
	}()
	go func() {
		defer wg.Done()
		popular, popularErr = s.fetchPopular(ctx, followed, limitEach)
	}()
	wg.Wait()

	if followingErr != nil {
		return nil, nil, followingErr
	}
	if popularErr != nil {
		return nil, nil, popularErr
	}
	return following, popular, nil
}
