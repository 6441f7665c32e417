package claims

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claim-eval/internal/extract"
	"claim-eval/internal/scoring"
)

func TestDecodeRequest(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := DecodeRequest(nil)
		require.ErrorIs(t, err, ErrNoInput)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, input := range []string{"{", "\n", "not json", "null", `"text"`, `[1,2]`, `{"query": 5}`, `{"query": null}`, `{"policyClauses": ["ok", 3]}`} {
			_, err := DecodeRequest([]byte(input))
			assert.ErrorIs(t, err, ErrBadJSON, "input %q", input)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{}`))
		require.NoError(t, err)
		assert.Equal(t, "", req.Query)
		assert.Empty(t, req.Clauses)
	})

	t.Run("non array clauses ignored", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"query": "knee surgery", "policyClauses": "Knee surgery is covered."}`))
		require.NoError(t, err)
		assert.Equal(t, "knee surgery", req.Query)
		assert.Empty(t, req.Clauses)
	})

	t.Run("full document", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"query": "q", "policyClauses": ["a", "b"], "extra": true}`))
		require.NoError(t, err)
		assert.Equal(t, Request{Query: "q", Clauses: []string{"a", "b"}}, req)
	})
}

func TestErrorDocument(t *testing.T) {
	assert.Equal(t, `{"error":"no-input"}`, string(ErrorDocument(ErrNoInput)))
	_, err := DecodeRequest([]byte("{"))
	assert.Equal(t, `{"error":"bad-json"}`, string(ErrorDocument(err)))
}

func TestScoreMarshal(t *testing.T) {
	tests := map[float64]string{
		3:   "3.0",
		3.8: "3.8",
		1.2: "1.2",
		0.8: "0.8",
	}
	for in, want := range tests {
		got, err := json.Marshal(Score(in))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestScoreMarshalAccumulated(t *testing.T) {
	tests := []struct {
		weights []float64
		want    string
	}{
		{[]float64{2.0, 1.2}, "3.2"},
		{[]float64{2.0, 1.2, 0.8}, "4.0"},
		{[]float64{2.0, 1.2, 0.8, 1.0}, "5.0"},
		{[]float64{2.0, 1.2, 1.0}, "4.2"},
		{[]float64{2.0, 0.8, 1.0}, "3.8"},
		{[]float64{1.2, 0.8}, "2.0"},
	}
	for _, tc := range tests {
		sum := 0.0
		for _, w := range tc.weights {
			sum += w
		}
		got, err := json.Marshal(Score(sum))
		require.NoError(t, err)
		assert.Equal(t, tc.want, string(got), "weights %v", tc.weights)
	}

	pq := extract.ParseQuery("46-year-old male, knee surgery in Pune, 12-month policy")
	score := scoring.ScoreClause("Knee surgery in Pune after 6 months of cover.", pq)
	got, err := json.Marshal(Score(score))
	require.NoError(t, err)
	assert.Equal(t, "5.0", string(got))
}

func TestAmountRoundTrip(t *testing.T) {
	for _, amount := range []Amount{{Value: 200000}, {Refer: true}, {}} {
		data, err := json.Marshal(amount)
		require.NoError(t, err)
		var decoded Amount
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, amount, decoded)
	}
}

func TestNewResponse(t *testing.T) {
	t.Run("waiting period rejection", func(t *testing.T) {
		resp := NewResponse(scoring.Decision{
			Outcome:               scoring.Rejected,
			Reason:                scoring.ReasonWaitingPeriod,
			WaitingPeriod:         true,
			WaitingMonthsRequired: 6,
			PolicyMonths:          3,
			Justification:         []scoring.ScoredClause{{Text: "Knee surgery after 6 months waiting", Score: 3}},
		})
		require.NotNil(t, resp.WaitingMonthsRequired)
		require.NotNil(t, resp.PolicyMonths)
		assert.Equal(t, 6, *resp.WaitingMonthsRequired)
		assert.Equal(t, 3, *resp.PolicyMonths)
		assert.Equal(t, Amount{}, resp.Amount)
		require.Len(t, resp.Justification, 1)
		assert.Equal(t, CitationDocID, resp.Justification[0].DocID)
	})

	t.Run("approval without limit", func(t *testing.T) {
		resp := NewResponse(scoring.Decision{Outcome: scoring.Approved, Reason: scoring.ReasonCovered})
		assert.True(t, resp.Amount.Refer)
		assert.Nil(t, resp.WaitingMonthsRequired)
		assert.NotNil(t, resp.Justification)
	})
}

func TestEncodeResponseLayout(t *testing.T) {
	resp := NewResponse(scoring.Decision{
		Outcome: scoring.Rejected,
		Reason:  scoring.ReasonNotCovered,
		Query:   extract.ParseQuery(""),
	})
	var buf bytes.Buffer
	require.NoError(t, EncodeResponse(&buf, resp))

	want := `{
  "Amount": 0,
  "Decision": "Rejected",
  "Justification": [],
  "ParsedQuery": {
    "age": -1,
    "location": "",
    "policyMonths": -1,
    "procedure": "",
    "sex": ""
  },
  "Reason": "Procedure not covered by matched clauses."
}
`
	assert.Equal(t, want, buf.String())
}
