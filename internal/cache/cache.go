// Package cache persists raw flight-offer payloads under opaque handles so
// follow-up filter and page requests can reuse a search without re-querying
// the provider.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sheriph/chat-bot/internal/amadeus"
	"github.com/sheriph/chat-bot/internal/models"
)

// ResultTTL is how long a stored result set stays retrievable. The same
// threshold doubles as the application-level staleness signal.
const ResultTTL = 30 * time.Minute

const keyPrefix = "offers:"

// Envelope wraps one raw search response with its lifecycle metadata.
// Envelopes are immutable once written; a new search always creates a new
// envelope under a new handle.
type Envelope struct {
	CreatedAt  time.Time              `json:"created_at"`
	ExpiresAt  time.Time              `json:"expires_at"`
	TTLSeconds int                    `json:"ttl_seconds"`
	Request    *amadeus.SearchRequest `json:"request,omitempty"`
	Response   json.RawMessage        `json:"response"`
}

// Stale reports whether the envelope is too old for interactive reuse. This
// is computed from CreatedAt independently of store-side expiry: the two
// clocks can disagree by fractions of a second at the boundary, and a stale
// warning is cheaper than serving results the store is about to drop.
func (e Envelope) Stale(now time.Time) bool {
	return now.Sub(e.CreatedAt) >= ResultTTL
}

func (e Envelope) Meta(now time.Time) models.CacheMeta {
	return models.CacheMeta{
		CreatedAt:  e.CreatedAt,
		ExpiresAt:  e.ExpiresAt,
		TTLSeconds: e.TTLSeconds,
		Stale:      e.Stale(now),
	}
}

// Store is the result-cache backend. Get returns
// models.ErrNotFoundOrExpired for absent keys; it never distinguishes
// "never existed" from "expired".
type Store interface {
	Put(ctx context.Context, env Envelope) (handle string, err error)
	Get(ctx context.Context, handle string) (Envelope, error)
	Close() error
}

// NewEnvelope stamps a raw payload with the standard lifecycle metadata.
func NewEnvelope(now time.Time, req *amadeus.SearchRequest, payload []byte) Envelope {
	return Envelope{
		CreatedAt:  now,
		ExpiresAt:  now.Add(ResultTTL),
		TTLSeconds: int(ResultTTL / time.Second),
		Request:    req,
		Response:   payload,
	}
}

// newHandle generates the opaque identifier a caller exchanges for cached
// results. Random, never derived from user input.
func newHandle() string {
	return uuid.NewString()
}
