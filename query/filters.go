package query

import (
	"time"

	"chirp/models"

	"github.com/huandu/go-sqlbuilder"
)

// AuthorFilter restricts candidates to tweets by the given authors.
type AuthorFilter struct {
	AuthorIds []int64
}

func (f *AuthorFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	if len(f.AuthorIds) > 0 {
		sb.Where(sb.In("tweets.author_id", intArgs(f.AuthorIds)...))
	}
}

// ExcludeAuthorFilter removes tweets by the given authors. Used by the
// popularity source to keep already-followed authors out.
type ExcludeAuthorFilter struct {
	AuthorIds []int64
}

func (f *ExcludeAuthorFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	if len(f.AuthorIds) > 0 {
		sb.Where(sb.NotIn("tweets.author_id", intArgs(f.AuthorIds)...))
	}
}

// TypeFilter restricts candidates to the given tweet types.
type TypeFilter struct {
	Types []models.TweetType
}

func (f *TypeFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	if len(f.Types) > 0 {
		args := make([]interface{}, len(f.Types))
		for i, t := range f.Types {
			args[i] = int(t)
		}
		sb.Where(sb.In("tweets.type", args...))
	}
}

// SinceFilter keeps tweets created at or after the given time.
type SinceFilter struct {
	Since time.Time
}

func (f *SinceFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	if !f.Since.IsZero() {
		sb.Where(sb.GreaterEqualThan("tweets.created_at", f.Since.Unix()))
	}
}

// NotDeletedFilter excludes soft-deleted tweets.
type NotDeletedFilter struct{}

func (f *NotDeletedFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	sb.Where(sb.Equal("tweets.deleted", 0))
}

func intArgs(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

var _ FilterStrategy = (*AuthorFilter)(nil)
var _ FilterStrategy = (*ExcludeAuthorFilter)(nil)
var _ FilterStrategy = (*TypeFilter)(nil)
var _ FilterStrategy = (*SinceFilter)(nil)
var _ FilterStrategy = (*NotDeletedFilter)(nil)
