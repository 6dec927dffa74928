package models

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/sheriph/chat-bot/pkg/duration"
)

// Wire types for the provider's flight-offers payload. Only the fields the
// filter engine and presenter consume are typed; everything else passes
// through opaquely so the raw payload survives a cache round trip intact.

type OfferResponse struct {
	Meta         json.RawMessage `json:"meta,omitempty"`
	Data         []FlightOffer   `json:"data"`
	Dictionaries *Dictionaries   `json:"dictionaries,omitempty"`
}

// Dictionaries maps provider codes to display names. Locations is kept
// opaque; its shape varies by provider version.
type Dictionaries struct {
	Carriers   map[string]string `json:"carriers,omitempty"`
	Aircraft   map[string]string `json:"aircraft,omitempty"`
	Currencies map[string]string `json:"currencies,omitempty"`
	Locations  json.RawMessage   `json:"locations,omitempty"`
}

type FlightOffer struct {
	ID                     string          `json:"id"`
	Source                 string          `json:"source,omitempty"`
	NumberOfBookableSeats  int             `json:"numberOfBookableSeats,omitempty"`
	Itineraries            []Itinerary     `json:"itineraries"`
	Price                  Price           `json:"price"`
	ValidatingAirlineCodes []string        `json:"validatingAirlineCodes,omitempty"`
	TravelerPricings       json.RawMessage `json:"travelerPricings,omitempty"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Departure   FlightPoint `json:"departure"`
	Arrival     FlightPoint `json:"arrival"`
	CarrierCode string      `json:"carrierCode"`
	Number      string      `json:"number"`
	Aircraft    *Aircraft   `json:"aircraft,omitempty"`
	Duration    string      `json:"duration,omitempty"`
}

type FlightPoint struct {
	IataCode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

type Aircraft struct {
	Code string `json:"code"`
}

type Price struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
	Base     string `json:"base,omitempty"`
}

// Stops is the per-itinerary layover count: segments minus one.
func (i Itinerary) Stops() int {
	if len(i.Segments) == 0 {
		return 0
	}
	return len(i.Segments) - 1
}

// DurationMinutes parses the itinerary's duration token, falling back to the
// sum of segment durations when the itinerary-level token is absent.
func (i Itinerary) DurationMinutes() int {
	if m := duration.Minutes(i.Duration); m > 0 {
		return m
	}
	total := 0
	for _, s := range i.Segments {
		total += duration.Minutes(s.Duration)
	}
	return total
}

// TotalAmount is the numeric offer price; 0 when the total is unparseable.
func (o FlightOffer) TotalAmount() float64 {
	v, err := strconv.ParseFloat(o.Price.Total, 64)
	if err != nil {
		return 0
	}
	return v
}

// TotalDurationMinutes sums itinerary durations across the whole offer.
func (o FlightOffer) TotalDurationMinutes() int {
	total := 0
	for _, it := range o.Itineraries {
		total += it.DurationMinutes()
	}
	return total
}

// FirstDeparture is the departure time of the first segment of the first
// itinerary; the zero time when the offer has no segments or the timestamp
// does not parse.
func (o FlightOffer) FirstDeparture() time.Time {
	if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
		return time.Time{}
	}
	return parseLocalTime(o.Itineraries[0].Segments[0].Departure.At)
}

// Provider timestamps are local times without a zone offset, but RFC 3339
// variants show up in test fixtures and older payloads.
func parseLocalTime(at string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, at); err == nil {
			return t
		}
	}
	return time.Time{}
}
