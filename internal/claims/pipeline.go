package claims

import (
	"io"

	"github.com/sirupsen/logrus"

	"claim-eval/internal/extract"
	"claim-eval/internal/scoring"
	"claim-eval/internal/util"
)

// Evaluator runs the extract, rank and decide pipeline for one request at a time. It holds
// no state between calls and is safe for concurrent use.
type Evaluator struct {
	engine *scoring.Engine
}

// NewEvaluator constructs an evaluator with the default decision engine.
func NewEvaluator() *Evaluator {
	return &Evaluator{engine: scoring.NewEngine()}
}

// Decide evaluates req and returns the engine decision.
func (e *Evaluator) Decide(req Request) scoring.Decision {
	sw := util.StartStopwatch()
	pq := extract.ParseQuery(req.Query)
	decision := e.engine.Evaluate(pq, req.Clauses)

	logrus.WithFields(logrus.Fields{
		"age":           pq.Age,
		"sex":           pq.Sex,
		"procedure":     pq.Procedure,
		"location":      pq.Location,
		"policy_months": pq.PolicyMonths,
		"clauses":       len(req.Clauses),
		"cited":         len(decision.Justification),
		"decision":      decision.Outcome,
		"duration_ms":   sw.ElapsedMs(),
	}).Debug("claim evaluated")
	return decision
}

// Evaluate evaluates req and returns the wire response.
func (e *Evaluator) Evaluate(req Request) Response {
	return NewResponse(e.Decide(req))
}

// Run drains r, evaluates the request document and writes the result to w. It returns the
// process exit code: 0 on success, 1 when the input is missing or malformed.
func Run(r io.Reader, w io.Writer) int {
	data, err := io.ReadAll(r)
	if err != nil {
		// A partial read is never decoded.
		logrus.WithError(err).Warn("read request")
		if _, werr := w.Write(ErrorDocument(ErrBadJSON)); werr != nil {
			logrus.WithError(werr).Error("write error document")
		}
		return 1
	}

	req, err := DecodeRequest(data)
	if err != nil {
		logrus.WithError(err).Warn("decode request")
		if _, werr := w.Write(ErrorDocument(err)); werr != nil {
			logrus.WithError(werr).Error("write error document")
		}
		return 1
	}

	if err := EncodeResponse(w, NewEvaluator().Evaluate(req)); err != nil {
		logrus.WithError(err).Error("write response")
		return 1
	}
	return 0
}
