package feed

import (
	"testing"

	"chirp/models"

	"github.com/stretchr/testify/assert"
)

func followedCandidates(ids ...int64) []models.Candidate {
	candidates := make([]models.Candidate, len(ids))
	for i, id := range ids {
		candidates[i] = models.Candidate{
			Tweet:  models.Tweet{Id: id},
			Source: models.CandidateFollowed,
		}
	}
	return candidates
}

func popularCandidates(ids ...int64) []models.Candidate {
	candidates := make([]models.Candidate, len(ids))
	for i, id := range ids {
		candidates[i] = models.Candidate{
			Tweet:  models.Tweet{Id: id},
			Source: models.CandidatePopular,
		}
	}
	return candidates
}

func pageIds(page []models.Candidate) []int64 {
	ids := make([]int64, len(page))
	for i, c := range page {
		ids[i] = c.Tweet.Id
	}
	return ids
}

func TestComposeForYou(t *testing.T) {
	tests := []struct {
		name      string
		following []models.Candidate
		popular   []models.Candidate
		page      int
		limit     int
		expected  []int64
	}{
		{
			name:      "full quota, popular block first",
			following: followedCandidates(1, 2, 3, 4, 5, 6, 7, 8),
			popular:   popularCandidates(101, 102, 103, 104),
			page:      1,
			limit:     10,
			expected:  []int64{101, 102, 103, 1, 2, 3, 4, 5, 6, 7},
		},
		{
			name:      "two popular with limit five",
			following: followedCandidates(1, 2, 3, 4, 5, 6, 7, 8, 9, 10),
			popular:   popularCandidates(101, 102),
			page:      1,
			limit:     5,
			expected:  []int64{101, 102, 1, 2, 3},
		},
		{
			name:      "single popular backfills from following",
			following: followedCandidates(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11),
			popular:   popularCandidates(101),
			page:      1,
			limit:     10,
			expected:  []int64{101, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		},
		{
			name:      "no popular candidates",
			following: followedCandidates(1, 2, 3, 4),
			popular:   nil,
			page:      1,
			limit:     3,
			expected:  []int64{1, 2, 3},
		},
		{
			name:      "following exhausted backfills from popular",
			following: followedCandidates(1, 2),
			popular:   popularCandidates(101, 102, 103, 104, 105, 106),
			page:      1,
			limit:     5,
			expected:  []int64{101, 102, 1, 2, 103},
		},
		{
			name:      "both exhausted returns short page",
			following: followedCandidates(1),
			popular:   popularCandidates(101),
			page:      1,
			limit:     10,
			expected:  []int64{101, 1},
		},
		{
			name:      "no candidates at all",
			following: nil,
			popular:   nil,
			page:      1,
			limit:     10,
			expected:  []int64{},
		},
		{
			name:      "second page consumes the remainder",
			following: followedCandidates(1, 2, 3, 4, 5, 6, 7, 8),
			popular:   popularCandidates(101, 102, 103, 104),
			page:      2,
			limit:     5,
			expected:  []int64{103, 104, 4, 5, 6},
		},
		{
			name:      "page beyond exhaustion is empty",
			following: followedCandidates(1, 2),
			popular:   popularCandidates(101),
			page:      3,
			limit:     10,
			expected:  []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := composeForYou(tt.following, tt.popular, tt.page, tt.limit, 0.3)
			assert.Equal(t, tt.expected, pageIds(result))
			assert.LessOrEqual(t, len(result), tt.limit)
		})
	}
}

func TestComposeForYouPopularBlockPrecedesFollowing(t *testing.T) {
	result := composeForYou(
		followedCandidates(1, 2, 3, 4, 5, 6, 7),
		popularCandidates(101, 102, 103),
		1, 10, 0.3,
	)

	assert.Len(t, result, 10)
	for i, c := range result {
		if i < 3 {
			assert.Equal(t, models.CandidatePopular, c.Source, "slot %d should be popular", i)
		} else {
			assert.Equal(t, models.CandidateFollowed, c.Source, "slot %d should be followed", i)
		}
	}
}

func TestComposeForYouDeterministic(t *testing.T) {
	following := followedCandidates(1, 2, 3, 4, 5, 6, 7, 8, 9)
	popular := popularCandidates(101, 102, 103)

	first := composeForYou(following, popular, 1, 5, 0.3)
	second := composeForYou(following, popular, 1, 5, 0.3)
	assert.Equal(t, pageIds(first), pageIds(second))
}

func TestComposeForYouNoDuplicatesAcrossPages(t *testing.T) {
	following := followedCandidates(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)
	popular := popularCandidates(101, 102, 103, 104, 105)

	seen := make(map[int64]int)
	for page := 1; page <= 4; page++ {
		for _, id := range pageIds(composeForYou(following, popular, page, 5, 0.3)) {
			seen[id]++
		}
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "tweet %d appeared %d times", id, count)
	}
}

func TestComposeFollowing(t *testing.T) {
	candidates := followedCandidates(5, 4, 3, 2, 1)

	tests := []struct {
		name     string
		page     int
		limit    int
		expected []int64
	}{
		{"first page", 1, 3, []int64{5, 4, 3}},
		{"second page", 2, 3, []int64{2, 1}},
		{"page past the end", 3, 3, nil},
		{"limit covers everything", 1, 10, []int64{5, 4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := composeFollowing(candidates, tt.page, tt.limit)
			if tt.expected == nil {
				assert.Empty(t, result)
				return
			}
			assert.Equal(t, tt.expected, pageIds(result))
		})
	}
}
