package query

import (
	"fmt"
	"strings"

	"chirp/models"
)

// NoScoring simply orders by tweet id
type NoScoring struct{}

// ApplyScoring adds no scoring to the query
func (s *NoScoring) ApplyScoring(sb *strings.Builder) {
	// Chronological feeds already sort on created_at and id
}

func (s *NoScoring) GetSort() []string {
	return []string{"tweets.created_at DESC", "tweets.id DESC"}
}

// EngagementScoring scores tweets by current engagement: likes plus
// retweet children. Both terms are correlated subqueries so the score
// reflects the counts as of query time, never a stored snapshot.
type EngagementScoring struct{}

func (s *EngagementScoring) ApplyScoring(sb *strings.Builder) {
	sb.WriteString(fmt.Sprintf(
		"(SELECT COUNT(*) FROM likes WHERE likes.tweet_id = tweets.id)"+
			" + (SELECT COUNT(*) FROM tweets children WHERE children.parent_id = tweets.id AND children.type = %d AND children.deleted = 0)",
		models.TypeRetweet,
	))
}

func (s *EngagementScoring) GetSort() []string {
	return []string{"score DESC", "tweets.id DESC"}
}

var _ ScoringStrategy = (*NoScoring)(nil)
var _ ScoringStrategy = (*EngagementScoring)(nil)
