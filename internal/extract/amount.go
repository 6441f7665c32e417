package extract

import (
	"regexp"
	"strings"
)

var (
	// Digit grouping is not validated so both "1,50,000" and "150,000" parse.
	amountPattern  = regexp.MustCompile(`(?i)(\d{1,3}[,\d]*)\s*(?:inr|rs|rupees)?`)
	amountFallback = regexp.MustCompile(`\d{5,7}`)
)

// Amount locates a monetary figure in s. The first comma-grouped digit run is tried first;
// when it cannot be parsed the first run of five to seven digits is used instead.
func Amount(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if m := amountPattern.FindStringSubmatch(s); m != nil {
		if v, ok := parseInt32(strings.ReplaceAll(m[1], ",", "")); ok {
			return v, true
		}
	}
	if digits := amountFallback.FindString(s); digits != "" {
		return parseInt32(digits)
	}
	return 0, false
}
