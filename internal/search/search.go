// Package search ranks catalog names against a user query. It is a
// pure helper for interactive item lookup and holds no state.
package search

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"GEWatch/internal/model"
)

// Match pairs a catalog entry with its fuzzy-match rank (lower is
// closer).
type Match struct {
	Entry model.CatalogEntry
	Rank  int
}

// Rank returns up to limit catalog entries matching the query,
// best match first. An empty query matches nothing.
func Rank(query string, catalog []model.CatalogEntry, limit int) []Match {
	if query == "" || limit <= 0 {
		return nil
	}

	names := make([]string, len(catalog))
	for i, e := range catalog {
		names[i] = e.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)

	matches := make([]Match, 0, limit)
	for _, r := range ranks {
		matches = append(matches, Match{Entry: catalog[r.OriginalIndex], Rank: r.Distance})
		if len(matches) == limit {
			break
		}
	}
	return matches
}
