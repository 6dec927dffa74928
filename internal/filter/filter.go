// Package filter narrows, orders and pages a cached offer list. Everything
// here is pure: the same criteria against the same list always produces the
// same page.
package filter

import (
	"sort"
	"strings"

	"github.com/sheriph/chat-bot/internal/models"
)

const (
	SortCheapest = "cheapest"
	SortFastest  = "fastest"
	SortEarliest = "earliest"

	StopsAny     = "any"
	StopsNonStop = "nonstop"
	StopsOne     = "1-stop"
	StopsTwoPlus = "2+-stops"

	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Criteria is the follow-up filter input. Zero values mean "no filtering"
// for Airlines and Stops; Page and PageSize are normalized by Normalize.
type Criteria struct {
	Airlines []string
	Stops    string
	SortBy   string
	Page     int
	PageSize int
}

// Normalize fills defaults and clamps the paging fields.
func (c *Criteria) Normalize() {
	c.SortBy = strings.ToLower(strings.TrimSpace(c.SortBy))
	switch c.SortBy {
	case SortCheapest, SortFastest, SortEarliest:
	default:
		c.SortBy = SortCheapest
	}

	c.Stops = strings.ToLower(strings.TrimSpace(c.Stops))
	switch c.Stops {
	case StopsNonStop, StopsOne, StopsTwoPlus:
	default:
		c.Stops = StopsAny
	}

	if c.Page < 1 {
		c.Page = 1
	}
	if c.PageSize < 1 {
		c.PageSize = DefaultPageSize
	}
	if c.PageSize > MaxPageSize {
		c.PageSize = MaxPageSize
	}
}

// Apply filters, sorts and pages the offer list without mutating it.
func Apply(offers []models.FlightOffer, criteria Criteria) ([]models.FlightOffer, models.Pagination) {
	criteria.Normalize()

	filtered := make([]models.FlightOffer, 0, len(offers))
	for _, o := range offers {
		if matchesAirlines(o, criteria.Airlines) && matchesStops(o, criteria.Stops) {
			filtered = append(filtered, o)
		}
	}

	sortOffers(filtered, criteria.SortBy)

	return paginate(filtered, criteria.Page, criteria.PageSize)
}

// matchesAirlines keeps an offer when any segment of any itinerary is
// operated by an allow-listed carrier. An empty list keeps everything.
func matchesAirlines(o models.FlightOffer, allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	for _, it := range o.Itineraries {
		for _, seg := range it.Segments {
			for _, code := range allow {
				if strings.EqualFold(seg.CarrierCode, strings.TrimSpace(code)) {
					return true
				}
			}
		}
	}
	return false
}

// matchesStops keeps an offer only when every itinerary falls in the
// requested bucket. A nonstop outbound with a one-stop return matches
// neither "nonstop" nor "1-stop".
func matchesStops(o models.FlightOffer, bucket string) bool {
	if bucket == StopsAny {
		return true
	}
	for _, it := range o.Itineraries {
		stops := it.Stops()
		switch bucket {
		case StopsNonStop:
			if stops != 0 {
				return false
			}
		case StopsOne:
			if stops != 1 {
				return false
			}
		case StopsTwoPlus:
			if stops < 2 {
				return false
			}
		}
	}
	return true
}

// sortOffers orders in place. The sort is stable so ties keep the upstream
// relevance order.
func sortOffers(offers []models.FlightOffer, sortBy string) {
	switch sortBy {
	case SortFastest:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].TotalDurationMinutes() < offers[j].TotalDurationMinutes()
		})
	case SortEarliest:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].FirstDeparture().Before(offers[j].FirstDeparture())
		})
	default: // cheapest
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].TotalAmount() < offers[j].TotalAmount()
		})
	}
}

func paginate(offers []models.FlightOffer, page, pageSize int) ([]models.FlightOffer, models.Pagination) {
	total := len(offers)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return offers[start:end], models.Pagination{
		Page:       page,
		Limit:      pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
