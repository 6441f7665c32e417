package api

import (
	"testing"

	"golang.org/x/time/rate"
)

func TestClientLimiterIsPerIP(t *testing.T) {
	l := newClientLimiter(rate.Limit(1), 2)
	for i := 0; i < 2; i++ {
		if !l.allow("10.0.0.1") {
			t.Fatalf("request %d should pass within burst", i)
		}
	}
	if l.allow("10.0.0.1") {
		t.Fatalf("third request should be throttled")
	}
	if !l.allow("10.0.0.2") {
		t.Fatalf("other client should have its own bucket")
	}
}
