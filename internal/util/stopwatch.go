package util

import "time"

// Stopwatch measures how long a single evaluation takes.
type Stopwatch struct {
	started time.Time
}

// StartStopwatch returns a running stopwatch.
func StartStopwatch() Stopwatch {
	return Stopwatch{started: time.Now()}
}

// Elapsed is the time since the stopwatch started; zero for an unstarted stopwatch.
func (s Stopwatch) Elapsed() time.Duration {
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}

// ElapsedMs is Elapsed truncated to whole milliseconds, suitable for log fields.
func (s Stopwatch) ElapsedMs() int64 {
	return s.Elapsed().Milliseconds()
}
