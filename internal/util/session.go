package util

import "time"

// SessionKey maps a timestamp to its trading-session identifier. For daily
// and intraday bars alike the session is the UTC calendar date, which is how
// the daily-drawdown halt decides when a new session begins.
func SessionKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SameSession reports whether two timestamps fall in the same trading
// session.
func SameSession(a, b time.Time) bool {
	return SessionKey(a) == SessionKey(b)
}
