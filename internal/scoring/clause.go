package scoring

import (
	"strings"

	"claim-eval/internal/extract"
)

const (
	procedureWeight = 2.0
	locationWeight  = 1.2
	tenureWeight    = 0.8
	kneeWeight      = 1.0
)

// ScoredClause pairs a policy clause with its relevance to a parsed query.
type ScoredClause struct {
	Text  string
	Score float64
}

// ScoreClause returns the additive relevance of clause to the parsed query. Matching is
// case-insensitive and unbounded; a clause sharing no signal with the query scores zero.
func ScoreClause(clause string, pq extract.ParsedQuery) float64 {
	c := extract.Lower(clause)
	score := 0.0
	if pq.Procedure != "" && strings.Contains(c, extract.Lower(pq.Procedure)) {
		score += procedureWeight
	}
	if pq.Location != "" && strings.Contains(c, extract.Lower(pq.Location)) {
		score += locationWeight
	}
	if pq.PolicyMonths > 0 && strings.Contains(c, "month") {
		if months, ok := extract.FirstInt(c); ok && months > 0 && months <= pq.PolicyMonths {
			score += tenureWeight
		}
	}
	// Stacks with the procedure bonus when the procedure is "knee surgery".
	if strings.Contains(c, "knee") && strings.Contains(pq.Procedure, "knee") {
		score += kneeWeight
	}
	return score
}
