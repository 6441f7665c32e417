package scoring

import (
	"fmt"
	"testing"

	"claim-eval/internal/extract"
)

func TestRankStableDescending(t *testing.T) {
	pq := extract.ParsedQuery{Procedure: "knee surgery", Location: "pune", PolicyMonths: extract.Unknown, Age: extract.Unknown}
	clauses := []string{
		"Hospitals in Pune are in network.",     // 1.2
		"Dental care is excluded.",              // 0
		"Knee surgery is covered.",              // 3.0
		"Cashless claims in Pune need a card.",  // 1.2
		"Knee surgery in Pune is covered.",      // 4.2
		"Knee braces are reimbursed.",           // 1.0
	}
	ranked := Rank(clauses, pq)
	wantOrder := []string{clauses[4], clauses[2], clauses[0], clauses[3], clauses[5]}
	if len(ranked) != len(wantOrder) {
		t.Fatalf("expected %d ranked clauses got %d", len(wantOrder), len(ranked))
	}
	for i, want := range wantOrder {
		if ranked[i].Text != want {
			t.Fatalf("position %d: expected %q got %q", i, want, ranked[i].Text)
		}
		if i > 0 && ranked[i].Score > ranked[i-1].Score {
			t.Fatalf("ranking not descending at %d", i)
		}
	}
}

func TestTop(t *testing.T) {
	ranked := make([]ScoredClause, 12)
	for i := range ranked {
		ranked[i] = ScoredClause{Text: fmt.Sprintf("clause %d", i), Score: 1}
	}
	if got := Top(ranked, DefaultJustificationLimit); len(got) != DefaultJustificationLimit {
		t.Fatalf("expected %d got %d", DefaultJustificationLimit, len(got))
	}
	if got := Top(ranked[:3], DefaultJustificationLimit); len(got) != 3 {
		t.Fatalf("expected 3 got %d", len(got))
	}
}
