// Package present renders a filtered offer page as markdown for the chat
// layer. The LLM splices this text into its reply verbatim, so the output
// stays plain: numbered offers, one line per itinerary.
package present

import (
	"fmt"
	"strings"

	"github.com/sheriph/chat-bot/internal/models"
	"github.com/sheriph/chat-bot/pkg/currency"
	"github.com/sheriph/chat-bot/pkg/duration"
)

// Offers renders one page of offers. Carrier codes resolve to names through
// the response dictionaries when available.
func Offers(offers []models.FlightOffer, dict *models.Dictionaries, p models.Pagination) string {
	if len(offers) == 0 {
		return "No flights matched your filters. Try relaxing the airline or stops filter, or search again."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d of %d offers (page %d of %d):\n\n", len(offers), p.Total, p.Page, p.TotalPages)

	base := (p.Page - 1) * p.Limit
	for i, offer := range offers {
		fmt.Fprintf(&b, "**%d. %s**\n", base+i+1, currency.Format(offer.TotalAmount(), offer.Price.Currency))
		for _, it := range offer.Itineraries {
			b.WriteString("- " + itineraryLine(it, dict) + "\n")
		}
		if offer.NumberOfBookableSeats > 0 && offer.NumberOfBookableSeats <= 5 {
			fmt.Fprintf(&b, "- Only %d seats left at this price\n", offer.NumberOfBookableSeats)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func itineraryLine(it models.Itinerary, dict *models.Dictionaries) string {
	if len(it.Segments) == 0 {
		return "(no segments)"
	}

	route := make([]string, 0, len(it.Segments)+1)
	route = append(route, it.Segments[0].Departure.IataCode)
	for _, seg := range it.Segments {
		route = append(route, seg.Arrival.IataCode)
	}

	carriers := carrierNames(it, dict)

	stops := it.Stops()
	stopsText := "nonstop"
	if stops == 1 {
		stopsText = "1 stop"
	} else if stops > 1 {
		stopsText = fmt.Sprintf("%d stops", stops)
	}

	return fmt.Sprintf("%s · %s · %s · %s",
		strings.Join(route, " → "),
		duration.Format(it.DurationMinutes()),
		stopsText,
		strings.Join(carriers, ", "))
}

func carrierNames(it models.Itinerary, dict *models.Dictionaries) []string {
	seen := make(map[string]bool)
	var names []string
	for _, seg := range it.Segments {
		code := strings.ToUpper(seg.CarrierCode)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true

		name := code
		if dict != nil {
			if n, ok := dict.Carriers[code]; ok && n != "" {
				name = titleCase(n)
			}
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		names = []string{"unknown carrier"}
	}
	return names
}

// Dictionary carrier names arrive fully upper-cased ("BRITISH AIRWAYS").
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
