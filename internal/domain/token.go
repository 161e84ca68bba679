package domain

import "time"

// Token is a bearer credential for the upstream market-data API.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

func (t Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}
