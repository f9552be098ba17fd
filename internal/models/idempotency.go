package models

import "time"

// IdempotencyRecord is a cached response for one idempotency key.
// A record is immutable once written: the only transitions are
// UNSEEN -> CACHED (first commit), CACHED -> EXPIRED (TTL elapses) and
// EXPIRED -> UNSEEN (deleted at next lookup or by the sweeper).
type IdempotencyRecord struct {
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	Key          string    `json:"key"`
	Method       string    `json:"method"`
	Path         string    `json:"path"`
	ResponseBody []byte    `json:"response_body"`
	StatusCode   int       `json:"status_code"`
}

// Expired reports whether the record's TTL has elapsed at the given instant.
func (r *IdempotencyRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
