package duration

import "testing"

func TestMinutes(t *testing.T) {
	tests := []struct {
		token string
		want  int
	}{
		{"PT11H25M", 685},
		{"PT2H", 120},
		{"PT45M", 45},
		{"PT0M", 0},
		{"PT", 0},
		{"", 0},
		{"garbage", 0},
		{"PT1H5M", 65},
	}

	for _, tt := range tests {
		if got := Minutes(tt.token); got != tt.want {
			t.Errorf("Minutes(%q) = %d, want %d", tt.token, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{685, "11h 25m"},
		{120, "2h"},
		{45, "45m"},
		{0, "0m"},
		{-10, "0m"},
	}

	for _, tt := range tests {
		if got := Format(tt.minutes); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
