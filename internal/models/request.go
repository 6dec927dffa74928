package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	TripOneWay       = "one_way"
	TripReturn       = "return"
	TripMultiSegment = "multi_segment"
)

var iataPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// TripLeg is one requested origin-destination pair with a departure date.
type TripLeg struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
}

type Passengers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

// TripSpec is the caller-facing search input. One-way and return trips use
// the flat Origin/Destination fields; multi-segment trips supply Legs.
type TripSpec struct {
	TripType      string     `json:"trip_type,omitempty"`
	Origin        string     `json:"origin,omitempty"`
	Destination   string     `json:"destination,omitempty"`
	DepartureDate string     `json:"departure_date,omitempty"`
	ReturnDate    string     `json:"return_date,omitempty"`
	Legs          []TripLeg  `json:"segments,omitempty"`
	Passengers    Passengers `json:"passengers"`
	CabinClass    string     `json:"cabin_class,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	MaxOffers     int        `json:"max_offers,omitempty"`
}

// Validate normalizes the spec in place and reports the first offending
// field. Validation happens here, before the request builder, so the builder
// can stay a pure shaping function.
func (s *TripSpec) Validate() error {
	if s.TripType == "" {
		switch {
		case len(s.Legs) > 0:
			s.TripType = TripMultiSegment
		case s.ReturnDate != "":
			s.TripType = TripReturn
		default:
			s.TripType = TripOneWay
		}
	}
	s.TripType = strings.ToLower(s.TripType)

	if s.Passengers.Adults == 0 {
		s.Passengers.Adults = 1
	}
	if s.Passengers.Adults < 1 {
		return ValidationError("passengers.adults must be at least 1")
	}
	if s.Passengers.Children < 0 || s.Passengers.Infants < 0 {
		return ValidationError("passenger counts must not be negative")
	}
	// Infants ride on an adult's lap; each one is associated with an adult
	// traveler, cyclically when infants outnumber adults.
	if s.Passengers.Infants > 0 && s.Passengers.Adults < 1 {
		return ValidationError("infants require at least one adult")
	}

	if s.CabinClass == "" {
		s.CabinClass = "ECONOMY"
	}
	s.CabinClass = strings.ToUpper(s.CabinClass)
	switch s.CabinClass {
	case "ECONOMY", "PREMIUM_ECONOMY", "BUSINESS", "FIRST":
	default:
		return ValidationError("cabin_class must be one of economy, premium_economy, business, first")
	}

	if s.Currency == "" {
		s.Currency = "USD"
	}
	s.Currency = strings.ToUpper(s.Currency)

	if s.MaxOffers <= 0 {
		s.MaxOffers = 20
	}
	if s.MaxOffers > 250 {
		s.MaxOffers = 250
	}

	switch s.TripType {
	case TripMultiSegment:
		if len(s.Legs) == 0 {
			return ValidationError("segments are required for a multi_segment trip")
		}
		for i := range s.Legs {
			leg := &s.Legs[i]
			var err error
			if leg.Origin, err = normalizeIATA(leg.Origin, fmt.Sprintf("segments[%d].origin", i)); err != nil {
				return err
			}
			if leg.Destination, err = normalizeIATA(leg.Destination, fmt.Sprintf("segments[%d].destination", i)); err != nil {
				return err
			}
			if err = checkDate(leg.DepartureDate, fmt.Sprintf("segments[%d].departure_date", i)); err != nil {
				return err
			}
		}
	case TripOneWay, TripReturn:
		var err error
		if s.Origin, err = normalizeIATA(s.Origin, "origin"); err != nil {
			return err
		}
		if s.Destination, err = normalizeIATA(s.Destination, "destination"); err != nil {
			return err
		}
		if err = checkDate(s.DepartureDate, "departure_date"); err != nil {
			return err
		}
		if s.TripType == TripReturn {
			if s.ReturnDate == "" {
				return ValidationError("return_date is required for a return trip")
			}
			if err = checkDate(s.ReturnDate, "return_date"); err != nil {
				return err
			}
			dep, _ := time.Parse("2006-01-02", s.DepartureDate)
			ret, _ := time.Parse("2006-01-02", s.ReturnDate)
			if ret.Before(dep) {
				return ValidationError("return_date must not be before departure_date")
			}
		}
	default:
		return ValidationError("trip_type must be one of one_way, return, multi_segment")
	}

	return nil
}

func normalizeIATA(code, field string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", ValidationError(field + " is required")
	}
	if !iataPattern.MatchString(code) {
		return "", ValidationError(field + " must be a 3-letter IATA code")
	}
	return code, nil
}

func checkDate(date, field string) error {
	if date == "" {
		return ValidationError(field + " is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ValidationError(field + " must be a valid date in YYYY-MM-DD format")
	}
	return nil
}
