package scoring

import (
	"fmt"
	"testing"

	"claim-eval/internal/extract"
)

const (
	kneeWaitingClause = "Knee surgery is covered after a waiting period of 6 months."
	limitClause       = "Maximum payable limit is Rs. 2,00,000 per claim."
	puneLimitClause   = "Maximum payable limit in Pune is Rs. 2,00,000 per claim."
)

func TestEngineEvaluate(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		clauses        []string
		outcome        Outcome
		reason         string
		amount         int
		referToClause  bool
		waitingPeriod  bool
		waitingMonths  int
		policyMonths   int
		justifications int
	}{
		{
			name:           "within waiting period",
			query:          "45-year-old male, knee surgery in Pune, 3-month policy",
			clauses:        []string{kneeWaitingClause, limitClause},
			outcome:        Rejected,
			reason:         ReasonWaitingPeriod,
			waitingPeriod:  true,
			waitingMonths:  6,
			policyMonths:   3,
			justifications: 1,
		},
		{
			name:           "waiting satisfied with relevant limit clause",
			query:          "45-year-old male, knee surgery in Pune, 12-month policy",
			clauses:        []string{kneeWaitingClause, puneLimitClause},
			outcome:        Approved,
			reason:         ReasonCovered,
			amount:         200000,
			justifications: 2,
		},
		{
			name:           "limit clause without any signal is never ranked",
			query:          "45-year-old male, knee surgery in Pune, 12-month policy",
			clauses:        []string{kneeWaitingClause, limitClause},
			outcome:        Approved,
			reason:         ReasonCovered,
			referToClause:  true,
			justifications: 1,
		},
		{
			name:    "no clauses",
			query:   "45-year-old male, knee surgery in Pune, 3-month policy",
			outcome: Rejected,
			reason:  ReasonNotCovered,
		},
		{
			name:           "cataract is never covered",
			query:          "60-year-old female, cataract surgery, 24-month policy",
			clauses:        []string{"Cataract surgery is covered up to a limit of 40,000."},
			outcome:        Rejected,
			reason:         ReasonNotCovered,
			justifications: 1,
		},
		{
			name:           "unknown tenure skips waiting check",
			query:          "knee surgery for my father",
			clauses:        []string{kneeWaitingClause},
			outcome:        Approved,
			reason:         ReasonCovered,
			referToClause:  true,
			justifications: 1,
		},
	}
	engine := NewEngine()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := engine.Evaluate(extract.ParseQuery(tc.query), tc.clauses)
			if d.Outcome != tc.outcome {
				t.Fatalf("expected outcome %s got %s", tc.outcome, d.Outcome)
			}
			if d.Reason != tc.reason {
				t.Fatalf("expected reason %q got %q", tc.reason, d.Reason)
			}
			if d.Amount != tc.amount {
				t.Fatalf("expected amount %d got %d", tc.amount, d.Amount)
			}
			if d.ReferToClause() != tc.referToClause {
				t.Fatalf("expected refer-to-clause %v got %v", tc.referToClause, d.ReferToClause())
			}
			if d.WaitingPeriod != tc.waitingPeriod || d.WaitingMonthsRequired != tc.waitingMonths || d.PolicyMonths != tc.policyMonths {
				t.Fatalf("unexpected waiting fields %+v", d)
			}
			if len(d.Justification) != tc.justifications {
				t.Fatalf("expected %d justifications got %d", tc.justifications, len(d.Justification))
			}
		})
	}
}

func TestEngineCapsJustification(t *testing.T) {
	clauses := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		clauses = append(clauses, fmt.Sprintf("Knee surgery rule %c", 'a'+i))
	}
	d := NewEngine().Evaluate(extract.ParseQuery("knee surgery"), clauses)
	if len(d.Justification) != DefaultJustificationLimit {
		t.Fatalf("expected %d justifications got %d", DefaultJustificationLimit, len(d.Justification))
	}
	for i, j := range d.Justification {
		if j.Text != clauses[i] {
			t.Fatalf("tie order not preserved at %d: %q", i, j.Text)
		}
	}
}

func TestCollect(t *testing.T) {
	s := Collect([]ScoredClause{
		{Text: "A waiting period applies to knee surgery."},
		{Text: "Waiting period of 24 months for joint replacement."},
		{Text: "Waiting period of 12 months for cataract."},
		{Text: "Sum insured 3,00,000 INR."},
		{Text: "Maximum payable 50,000."},
	})
	want := Signals{Covered: true, Waiting: true, WaitingMonths: 24, CoverAmount: 300000}
	if s != want {
		t.Fatalf("expected %+v got %+v", want, s)
	}
}

func TestResolveWaitingWithoutMonthsApproves(t *testing.T) {
	pq := extract.ParsedQuery{Age: extract.Unknown, PolicyMonths: 0, Procedure: "knee surgery"}
	d := Resolve(pq, nil, Signals{Covered: true, Waiting: true})
	if d.Outcome != Approved {
		t.Fatalf("expected approval got %s", d.Outcome)
	}
}
