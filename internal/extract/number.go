package extract

import (
	"math"
	"strconv"
)

// FirstInt returns the value of the first run of ASCII digits in s. It reports false when s
// holds no digits or when the run does not fit a 32-bit signed integer.
func FirstInt(s string) (int, bool) {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			continue
		}
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		return parseInt32(s[i:j])
	}
	return 0, false
}

func parseInt32(digits string) (int, bool) {
	v, err := strconv.ParseInt(digits, 10, 32)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Lower folds ASCII letters to lower case and leaves every other byte untouched, so byte
// offsets computed on the result are valid on the input.
func Lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func timesTwelve(n int) (int, bool) {
	v := int64(n) * 12
	if v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
