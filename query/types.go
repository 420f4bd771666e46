package query

import (
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// ScoringStrategy defines how candidate tweets are scored/ranked
type ScoringStrategy interface {
	// ApplyScoring writes the scoring expression to the builder
	ApplyScoring(sb *strings.Builder)
	// GetSort returns the ORDER BY clause
	GetSort() []string
}

// FilterStrategy adds WHERE conditions to the query
type FilterStrategy interface {
	// ApplyFilter adds filter conditions to the query builder
	ApplyFilter(sb *sqlbuilder.SelectBuilder)
}
