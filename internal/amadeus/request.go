package amadeus

import (
	"strconv"

	"github.com/sheriph/chat-bot/internal/models"
)

// Wire types for the flight-offers search request body.

type SearchRequest struct {
	CurrencyCode       string              `json:"currencyCode"`
	OriginDestinations []OriginDestination `json:"originDestinations"`
	Travelers          []Traveler          `json:"travelers"`
	Sources            []string            `json:"sources"`
	SearchCriteria     SearchCriteria      `json:"searchCriteria"`
}

type OriginDestination struct {
	ID                      string `json:"id"`
	OriginLocationCode      string `json:"originLocationCode"`
	DestinationLocationCode string `json:"destinationLocationCode"`
	DepartureDate           string `json:"departureDate"`
}

type Traveler struct {
	ID                string `json:"id"`
	TravelerType      string `json:"travelerType"`
	AssociatedAdultID string `json:"associatedAdultId,omitempty"`
}

type SearchCriteria struct {
	MaxFlightOffers int           `json:"maxFlightOffers"`
	FlightFilters   FlightFilters `json:"flightFilters"`
}

type FlightFilters struct {
	CabinRestrictions []CabinRestriction `json:"cabinRestrictions"`
}

type CabinRestriction struct {
	Cabin                string   `json:"cabin"`
	Coverage             string   `json:"coverage"`
	OriginDestinationIDs []string `json:"originDestinationIds"`
}

// BuildSearchRequest shapes a validated trip spec into the provider's wire
// format. Pure: IATA and date validity are the caller's responsibility.
func BuildSearchRequest(spec models.TripSpec) SearchRequest {
	var ods []OriginDestination

	switch spec.TripType {
	case models.TripMultiSegment:
		ods = make([]OriginDestination, 0, len(spec.Legs))
		for i, leg := range spec.Legs {
			ods = append(ods, OriginDestination{
				ID:                      strconv.Itoa(i + 1),
				OriginLocationCode:      leg.Origin,
				DestinationLocationCode: leg.Destination,
				DepartureDate:           leg.DepartureDate,
			})
		}
	case models.TripReturn:
		ods = []OriginDestination{
			{
				ID:                      "1",
				OriginLocationCode:      spec.Origin,
				DestinationLocationCode: spec.Destination,
				DepartureDate:           spec.DepartureDate,
			},
			{
				ID:                      "2",
				OriginLocationCode:      spec.Destination,
				DestinationLocationCode: spec.Origin,
				DepartureDate:           spec.ReturnDate,
			},
		}
	default: // one way
		ods = []OriginDestination{
			{
				ID:                      "1",
				OriginLocationCode:      spec.Origin,
				DestinationLocationCode: spec.Destination,
				DepartureDate:           spec.DepartureDate,
			},
		}
	}

	odIDs := make([]string, len(ods))
	for i, od := range ods {
		odIDs[i] = od.ID
	}

	return SearchRequest{
		CurrencyCode:       spec.Currency,
		OriginDestinations: ods,
		Travelers:          buildTravelers(spec.Passengers),
		Sources:            []string{"GDS"},
		SearchCriteria: SearchCriteria{
			MaxFlightOffers: spec.MaxOffers,
			FlightFilters: FlightFilters{
				CabinRestrictions: []CabinRestriction{
					{
						Cabin: spec.CabinClass,
						// Applied broadly rather than per leg; mixed-cabin
						// itineraries still come back.
						Coverage:             "MOST_SEGMENTS",
						OriginDestinationIDs: odIDs,
					},
				},
			},
		},
	}
}

// buildTravelers assigns dense sequential IDs starting at "1": adults first,
// then children, then infants. Each infant is tied to an adult by
// round-robin association. The provider rejects any other ordering.
func buildTravelers(p models.Passengers) []Traveler {
	travelers := make([]Traveler, 0, p.Adults+p.Children+p.Infants)
	next := 1

	adultIDs := make([]string, 0, p.Adults)
	for i := 0; i < p.Adults; i++ {
		id := strconv.Itoa(next)
		next++
		adultIDs = append(adultIDs, id)
		travelers = append(travelers, Traveler{ID: id, TravelerType: "ADULT"})
	}

	for i := 0; i < p.Children; i++ {
		travelers = append(travelers, Traveler{ID: strconv.Itoa(next), TravelerType: "CHILD"})
		next++
	}

	for i := 0; i < p.Infants; i++ {
		travelers = append(travelers, Traveler{
			ID:                strconv.Itoa(next),
			TravelerType:      "HELD_INFANT",
			AssociatedAdultID: adultIDs[i%len(adultIDs)],
		})
		next++
	}

	return travelers
}
