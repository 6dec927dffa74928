package models

import "time"

// CacheMeta describes the lifecycle of a stored result set, echoed back to
// the caller alongside every filtered page.
type CacheMeta struct {
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	TTLSeconds int       `json:"ttl_seconds"`
	Stale      bool      `json:"stale"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// SearchResponse is returned by the search endpoint: the first page of
// offers plus cache metadata. Cache is nil when persisting the result set
// failed and no follow-up handle was issued.
type SearchResponse struct {
	SearchID     string        `json:"search_id,omitempty"`
	Trip         TripSpec      `json:"trip"`
	Pagination   Pagination    `json:"pagination"`
	Cache        *CacheMeta    `json:"cache,omitempty"`
	Dictionaries *Dictionaries `json:"dictionaries,omitempty"`
	Offers       []FlightOffer `json:"offers"`
	Warnings     []string      `json:"warnings,omitempty"`
}

// ResultsResponse is returned by the follow-up filter/page endpoint.
type ResultsResponse struct {
	Pagination   Pagination    `json:"pagination"`
	Cache        CacheMeta     `json:"cache"`
	Dictionaries *Dictionaries `json:"dictionaries,omitempty"`
	Offers       []FlightOffer `json:"offers"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
