package claims

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"claim-eval/internal/extract"
	"claim-eval/internal/scoring"
)

// CitationDocID identifies the policy document every justification entry cites.
const CitationDocID = "policy_sample"

// ReferToClause replaces the amount when a claim is approved without a recoverable limit.
const ReferToClause = "Refer to clause"

var (
	// ErrNoInput is returned when the request stream carried no bytes at all.
	ErrNoInput = errors.New("no-input")
	// ErrBadJSON is returned for input that is not a well-formed request document.
	ErrBadJSON = errors.New("bad-json")
)

// Request is the evaluator input: a claim query and the policy clauses to test it against.
type Request struct {
	Query   string
	Clauses []string
}

// DecodeRequest parses a request document. A missing query is empty and a missing or
// non-array policyClauses is an empty list; any other shape mismatch is ErrBadJSON.
func DecodeRequest(data []byte) (Request, error) {
	if len(data) == 0 {
		return Request{}, ErrNoInput
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	if fields == nil {
		return Request{}, fmt.Errorf("%w: document is not an object", ErrBadJSON)
	}

	var req Request
	if raw, ok := fields["query"]; ok {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return Request{}, fmt.Errorf("%w: query: %v", ErrBadJSON, err)
		}
		query, ok := value.(string)
		if !ok {
			return Request{}, fmt.Errorf("%w: query is not a string", ErrBadJSON)
		}
		req.Query = query
	}

	req.Clauses = []string{}
	if raw, ok := fields["policyClauses"]; ok {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return Request{}, fmt.Errorf("%w: policyClauses: %v", ErrBadJSON, err)
		}
		if items, ok := value.([]any); ok {
			for i, item := range items {
				clause, ok := item.(string)
				if !ok {
					return Request{}, fmt.Errorf("%w: policyClauses[%d] is not a string", ErrBadJSON, i)
				}
				req.Clauses = append(req.Clauses, clause)
			}
		}
	}
	return req, nil
}

// Amount is either a recovered limit or the ReferToClause marker.
type Amount struct {
	Value int
	Refer bool
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Refer {
		return json.Marshal(ReferToClause)
	}
	return []byte(strconv.Itoa(a.Value)), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	switch v := value.(type) {
	case float64:
		*a = Amount{Value: int(v)}
	case string:
		if v != ReferToClause {
			return fmt.Errorf("unexpected amount %q", v)
		}
		*a = Amount{Refer: true}
	default:
		return fmt.Errorf("unexpected amount %s", string(data))
	}
	return nil
}

// Score is a clause relevance score. Integral values keep a trailing ".0" on the wire.
type Score float64

func (s Score) MarshalJSON() ([]byte, error) {
	out := strconv.FormatFloat(float64(s), 'f', -1, 64)
	if !strings.ContainsAny(out, ".eE") {
		out += ".0"
	}
	return []byte(out), nil
}

// Citation is one justification entry.
type Citation struct {
	DocID string `json:"doc_id"`
	Score Score  `json:"score"`
	Text  string `json:"text"`
}

// Response is the evaluator output document. Fields are declared in the order they are
// written.
type Response struct {
	Amount                Amount              `json:"Amount"`
	Decision              scoring.Outcome     `json:"Decision"`
	Justification         []Citation          `json:"Justification"`
	ParsedQuery           extract.ParsedQuery `json:"ParsedQuery"`
	PolicyMonths          *int                `json:"PolicyMonths,omitempty"`
	Reason                string              `json:"Reason"`
	WaitingMonthsRequired *int                `json:"WaitingMonthsRequired,omitempty"`
}

// NewResponse converts an engine decision into its wire form.
func NewResponse(d scoring.Decision) Response {
	resp := Response{
		Amount:        Amount{Value: d.Amount, Refer: d.ReferToClause()},
		Decision:      d.Outcome,
		Justification: make([]Citation, 0, len(d.Justification)),
		ParsedQuery:   d.Query,
		Reason:        d.Reason,
	}
	if d.Outcome == scoring.Rejected {
		resp.Amount = Amount{}
	}
	if d.WaitingPeriod {
		waiting, policy := d.WaitingMonthsRequired, d.PolicyMonths
		resp.WaitingMonthsRequired = &waiting
		resp.PolicyMonths = &policy
	}
	for _, clause := range d.Justification {
		resp.Justification = append(resp.Justification, Citation{
			DocID: CitationDocID,
			Score: Score(clause.Score),
			Text:  clause.Text,
		})
	}
	return resp
}

// EncodeResponse writes resp indented by two spaces and followed by a newline.
func EncodeResponse(w io.Writer, resp Response) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return nil
}

// ErrorDocument renders the compact error document for a decode failure.
func ErrorDocument(err error) []byte {
	code := ErrBadJSON.Error()
	if errors.Is(err, ErrNoInput) {
		code = ErrNoInput.Error()
	}
	payload, _ := json.Marshal(map[string]string{"error": code})
	return payload
}
