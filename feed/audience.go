package feed

import (
	"context"

	"chirp/models"

	"github.com/samber/lo"
)

// Anonymous is the viewer id used when no user is authenticated.
const Anonymous int64 = 0

// visible applies the audience rule: everyone-tweets are always
// visible, circle-tweets only to the author and current circle
// members. Anonymous viewers see everyone-tweets only.
func visible(tweet models.Tweet, viewerId int64, circles map[int64][]int64) bool {
	if tweet.Audience == models.AudienceEveryone {
		return true
	}
	if viewerId == Anonymous {
		return false
	}
	if viewerId == tweet.AuthorId {
		return true
	}
	return lo.Contains(circles[tweet.AuthorId], viewerId)
}

// filterVisible removes candidates the viewer may not see. Circle
// membership is resolved from current author state on every call,
// membership changes take effect immediately.
func (s *Service) filterVisible(ctx context.Context, candidates []models.Candidate, viewerId int64) ([]models.Candidate, error) {
	circleAuthors := lo.Uniq(lo.FilterMap(candidates, func(c models.Candidate, _ int) (int64, bool) {
		return c.Tweet.AuthorId, c.Tweet.Audience == models.AudienceCircle
	}))

	var circles map[int64][]int64
	if len(circleAuthors) > 0 {
		var err error
		circles, err = s.stores.Users.CircleMemberships(ctx, circleAuthors)
		if err != nil {
			return nil, err
		}
	}

	return lo.Filter(candidates, func(c models.Candidate, _ int) bool {
		return visible(c.Tweet, viewerId, circles)
	}), nil
}

// checkVisible is the single-tweet variant used by tweet and thread
// reads.
func (s *Service) checkVisible(ctx context.Context, tweet models.Tweet, viewerId int64) (bool, error) {
	if tweet.Audience == models.AudienceEveryone {
		return true, nil
	}

	circles, err := s.stores.Users.CircleMemberships(ctx, []int64{tweet.AuthorId})
	if err != nil {
		return false, err
	}
	return visible(tweet, viewerId, circles), nil
}
