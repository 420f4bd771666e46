package feed

import (
	"context"

	"github.com/samber/lo"
)

// followedIds resolves the set of authors whose tweets feed the
// following source: everyone the user follows plus the user itself.
// Following no one is valid and returns just the user's own id.
func (s *Service) followedIds(ctx context.Context, userId int64) ([]int64, error) {
	followed, err := s.stores.Follows.ListFollowed(ctx, userId)
	if err != nil {
		return nil, err
	}

	return lo.Uniq(append(followed, userId)), nil
}
