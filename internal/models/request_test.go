package models

import "testing"

func TestValidateOneWayDefaults(t *testing.T) {
	spec := TripSpec{
		Origin:        "los",
		Destination:   "LHR",
		DepartureDate: "2025-03-10",
	}

	if err := spec.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.TripType != TripOneWay {
		t.Errorf("trip type = %q, want %q", spec.TripType, TripOneWay)
	}
	if spec.Origin != "LOS" {
		t.Errorf("origin not upper-cased: %q", spec.Origin)
	}
	if spec.Passengers.Adults != 1 {
		t.Errorf("adults default = %d, want 1", spec.Passengers.Adults)
	}
	if spec.CabinClass != "ECONOMY" || spec.Currency != "USD" || spec.MaxOffers != 20 {
		t.Errorf("defaults not applied: %+v", spec)
	}
}

func TestValidateReturnDerivesTripType(t *testing.T) {
	spec := TripSpec{
		Origin:        "LOS",
		Destination:   "LHR",
		DepartureDate: "2025-03-10",
		ReturnDate:    "2025-03-20",
	}

	if err := spec.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.TripType != TripReturn {
		t.Errorf("trip type = %q, want %q", spec.TripType, TripReturn)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		spec TripSpec
	}{
		{"bad origin", TripSpec{Origin: "LOSX", Destination: "LHR", DepartureDate: "2025-03-10"}},
		{"missing destination", TripSpec{Origin: "LOS", DepartureDate: "2025-03-10"}},
		{"bad date", TripSpec{Origin: "LOS", Destination: "LHR", DepartureDate: "10-03-2025"}},
		{"return before departure", TripSpec{Origin: "LOS", Destination: "LHR", DepartureDate: "2025-03-10", ReturnDate: "2025-03-01"}},
		{"return without date", TripSpec{TripType: TripReturn, Origin: "LOS", Destination: "LHR", DepartureDate: "2025-03-10"}},
		{"multi segment without segments", TripSpec{TripType: TripMultiSegment}},
		{"negative children", TripSpec{Origin: "LOS", Destination: "LHR", DepartureDate: "2025-03-10", Passengers: Passengers{Adults: 1, Children: -1}}},
		{"bad cabin", TripSpec{Origin: "LOS", Destination: "LHR", DepartureDate: "2025-03-10", CabinClass: "luxury"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if _, ok := err.(ValidationError); !ok {
				t.Fatalf("error type = %T, want ValidationError", err)
			}
		})
	}
}

func TestValidateMultiSegment(t *testing.T) {
	spec := TripSpec{
		Legs: []TripLeg{
			{Origin: "los", Destination: "ist", DepartureDate: "2025-03-10"},
			{Origin: "ist", Destination: "lhr", DepartureDate: "2025-03-12"},
		},
	}

	if err := spec.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.TripType != TripMultiSegment {
		t.Errorf("trip type = %q, want %q", spec.TripType, TripMultiSegment)
	}
	if spec.Legs[0].Origin != "LOS" || spec.Legs[1].Destination != "LHR" {
		t.Errorf("legs not normalized: %+v", spec.Legs)
	}
}
