package types

import "testing"

func TestAddressValueScanRoundTrip(t *testing.T) {
	line2 := "Suite 4"
	in := Address{
		Line1:      "12 Orchard Rd",
		Line2:      &line2,
		City:       "Santa Rosa",
		State:      "CA",
		PostalCode: "95401",
		Country:    "US",
	}

	value, err := in.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}

	var out Address
	if err := out.Scan(value); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	if out.Line1 != in.Line1 || out.City != in.City || out.State != in.State {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if out.Line2 == nil || *out.Line2 != line2 {
		t.Fatalf("line2 lost in round trip: %+v", out.Line2)
	}
	if out.PostalCode != in.PostalCode || out.Country != in.Country {
		t.Fatalf("postal/country mismatch: %+v", out)
	}
}

func TestAddressValueRejectsMissingFields(t *testing.T) {
	in := Address{City: "Santa Rosa", State: "CA", PostalCode: "95401"}
	if _, err := in.Value(); err == nil {
		t.Fatalf("expected error for missing line1")
	}
}

func TestAddressCountryDefaultsToUS(t *testing.T) {
	in := Address{Line1: "12 Orchard Rd", City: "Santa Rosa", State: "CA", PostalCode: "95401"}
	value, err := in.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}

	var out Address
	if err := out.Scan(value); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if out.Country != "US" {
		t.Fatalf("expected default country US, got %q", out.Country)
	}
}

func TestAddressScanNil(t *testing.T) {
	out := Address{Line1: "stale"}
	if err := out.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) returned error: %v", err)
	}
	if out.Line1 != "" {
		t.Fatalf("Scan(nil) should reset the struct")
	}
}
