package feed

import (
	"math"

	"chirp/models"
)

// composeForYou merges the two candidate queues under the quota
// policy and returns the requested page.
//
// Per page: ceil(limit * popularShare) slots are reserved for
// popularity-sourced candidates, capped by what is actually
// available, and the popular block is placed before the following
// block. When one source runs dry the other backfills the remaining
// slots in its own order. Earlier pages are composed first so that a
// later page consumes exactly the candidates the previous pages left
// behind, which keeps the paging deterministic for a fixed candidate
// pool.
func composeForYou(following, popular []models.Candidate, page, limit int, popularShare float64) []models.Candidate {
	var composed []models.Candidate

	for p := 0; p < page; p++ {
		composed = composed[:0]

		popularSlots := int(math.Ceil(float64(limit) * popularShare))
		if popularSlots > len(popular) {
			popularSlots = len(popular)
		}
		followingSlots := limit - popularSlots
		if followingSlots > len(following) {
			followingSlots = len(following)
		}

		// Popular block first, then the chronological block.
		composed = append(composed, popular[:popularSlots]...)
		composed = append(composed, following[:followingSlots]...)
		popular = popular[popularSlots:]
		following = following[followingSlots:]

		// Backfill from whichever source still has candidates.
		for len(composed) < limit && (len(following) > 0 || len(popular) > 0) {
			if len(following) > 0 {
				composed = append(composed, following[0])
				following = following[1:]
			} else {
				composed = append(composed, popular[0])
				popular = popular[1:]
			}
		}

		if len(composed) > limit {
			composed = composed[:limit]
		}
		if len(composed) == 0 {
			break
		}
	}

	return composed
}

// composeFollowing pages the chronological candidate list with plain
// offset pagination. Candidates arrive already sorted newest first
// with id as tiebreak, so repeated calls page reproducibly.
func composeFollowing(candidates []models.Candidate, page, limit int) []models.Candidate {
	offset := (page - 1) * limit
	if offset >= len(candidates) {
		return nil
	}

	end := offset + limit
	if end > len(candidates) {
		end = len(candidates)
	}
	return candidates[offset:end]
}
