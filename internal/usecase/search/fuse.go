package search

import (
	"sort"

	"github.com/kailas-cloud/docdex/internal/domain/search"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges ranked hit lists via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) for each ranking where d appears.
// When a hit appears in several lists, the first occurrence's fields are kept.
func fuseRRF(lists [][]search.Hit, limit int) []search.Hit {
	type scored struct {
		hit   search.Hit
		score float64
	}

	merged := make(map[string]*scored)
	order := make([]string, 0)

	for _, list := range lists {
		for rank, h := range list {
			s := 1.0 / float64(rrfK+rank+1)
			if existing, ok := merged[h.ID()]; ok {
				existing.score += s
			} else {
				merged[h.ID()] = &scored{hit: h, score: s}
				order = append(order, h.ID())
			}
		}
	}

	hits := make([]search.Hit, 0, len(merged))
	for _, id := range order {
		s := merged[id]
		hits = append(hits, search.NewHit(s.hit.ID(), s.score, s.hit.Content(), s.hit.Fields()))
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score() > hits[j].Score()
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	return hits
}
