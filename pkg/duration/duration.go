// Package duration handles the ISO-8601-style duration tokens used by the
// flight provider, e.g. "PT11H25M". Only hour and minute components appear
// in offer payloads; either may be absent.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
)

var pattern = regexp.MustCompile(`^P(?:[0-9]+D)?T?(?:([0-9]+)H)?(?:([0-9]+)M)?`)

// Minutes parses a PThHmM token into total minutes. Unparseable or empty
// tokens yield 0 rather than an error: a missing duration on an otherwise
// valid offer should not poison sorting.
func Minutes(token string) int {
	if token == "" {
		return 0
	}
	m := pattern.FindStringSubmatch(token)
	if m == nil {
		return 0
	}
	total := 0
	if m[1] != "" {
		h, _ := strconv.Atoi(m[1])
		total += h * 60
	}
	if m[2] != "" {
		mins, _ := strconv.Atoi(m[2])
		total += mins
	}
	return total
}

// Format renders a minute count as "11h 25m" for human-readable output.
func Format(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	h := minutes / 60
	m := minutes % 60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
