package query

import (
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// TweetColumns is the column list every candidate query selects, in
// the order the db package scans them.
var TweetColumns = []string{
	"tweets.id", "tweets.author_id", "tweets.type", "tweets.audience",
	"tweets.content", "tweets.parent_id", "tweets.guest_views",
	"tweets.user_views", "tweets.created_at", "tweets.updated_at",
}

// CandidateQueryBuilder builds candidate queries with scoring and filters
type CandidateQueryBuilder struct {
	scoringLayers []scoringLayer
	filters       []FilterStrategy
}

type scoringLayer struct {
	strategy ScoringStrategy
	weight   float64
}

func NewCandidateQueryBuilder() *CandidateQueryBuilder {
	return &CandidateQueryBuilder{
		scoringLayers: make([]scoringLayer, 0),
		filters:       make([]FilterStrategy, 0),
	}
}

func (b *CandidateQueryBuilder) AddScoringLayer(strategy ScoringStrategy, weight float64) {
	b.scoringLayers = append(b.scoringLayers, scoringLayer{
		strategy: strategy,
		weight:   weight,
	})
}

func (b *CandidateQueryBuilder) AddFilter(filter FilterStrategy) {
	b.filters = append(b.filters, filter)
}

// Scored reports whether the query selects a score column.
func (b *CandidateQueryBuilder) Scored() bool {
	return len(b.scoringLayers) > 0
}

func (b *CandidateQueryBuilder) Build(limit int) (string, []interface{}) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()

	sb.Select(TweetColumns...)

	// Calculate final score if we have scoring layers
	if len(b.scoringLayers) > 0 {
		var scoreTerms []string

		for _, layer := range b.scoringLayers {
			var scoreExpr strings.Builder
			layer.strategy.ApplyScoring(&scoreExpr)

			scoreTerms = append(scoreTerms, fmt.Sprintf("(%f * (%s))", layer.weight, scoreExpr.String()))
		}

		sb.SelectMore(fmt.Sprintf("(%s) AS score", strings.Join(scoreTerms, " + ")))
	}

	sb.From("tweets")

	for _, filter := range b.filters {
		filter.ApplyFilter(sb)
	}

	// Order by score if we have scoring layers, otherwise
	// chronologically. Tweet ids increase with creation so id is the
	// stable tiebreak either way.
	if len(b.scoringLayers) > 0 {
		sb.OrderBy("score DESC", "tweets.id DESC")
	} else {
		sb.OrderBy("tweets.created_at DESC", "tweets.id DESC")
	}

	if limit > 0 {
		sb.Limit(limit)
	}

	return sb.Build()
}
