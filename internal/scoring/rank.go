package scoring

import (
	"sort"

	"claim-eval/internal/extract"
)

// Rank scores every clause against pq and returns those with a positive score, highest
// first. Equal scores keep their input order.
func Rank(clauses []string, pq extract.ParsedQuery) []ScoredClause {
	ranked := make([]ScoredClause, 0, len(clauses))
	for _, clause := range clauses {
		if score := ScoreClause(clause, pq); score > 0 {
			ranked = append(ranked, ScoredClause{Text: clause, Score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Top returns at most n leading entries of ranked.
func Top(ranked []ScoredClause, n int) []ScoredClause {
	if n < 0 || len(ranked) <= n {
		return ranked
	}
	return ranked[:n]
}
