package db

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Tidy purges tweets that were soft-deleted more than retentionDays
// ago, together with their orphaned engagement rows. Soft-deleted
// tweets are already invisible to every read path, this just reclaims
// the space.
func Tidy(database string, retentionDays int) error {
	db, err := NewDB(database)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.tidy(context.Background(), retentionDays)
}

func (db *DB) tidy(ctx context.Context, retentionDays int) error {
	cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour).Unix()

	log.WithFields(log.Fields{
		"cutoff": time.Unix(cutoff, 0).Format(time.RFC3339),
	}).Info("Tidying database")

	statements := []string{
		`DELETE FROM likes WHERE tweet_id IN (SELECT id FROM tweets WHERE deleted = 1 AND updated_at <= ?)`,
		`DELETE FROM bookmarks WHERE tweet_id IN (SELECT id FROM tweets WHERE deleted = 1 AND updated_at <= ?)`,
		`DELETE FROM tweet_hashtags WHERE tweet_id IN (SELECT id FROM tweets WHERE deleted = 1 AND updated_at <= ?)`,
		`DELETE FROM tweet_mentions WHERE tweet_id IN (SELECT id FROM tweets WHERE deleted = 1 AND updated_at <= ?)`,
		`DELETE FROM tweets WHERE deleted = 1 AND updated_at <= ? AND id NOT IN (SELECT DISTINCT parent_id FROM tweets WHERE parent_id IS NOT NULL AND deleted = 0)`,
	}

	for _, stmt := range statements {
		if _, err := db.db.ExecContext(ctx, stmt, cutoff); err != nil {
			log.Error("Error tidying database", err)
			return err
		}
	}

	return nil
}
