package enums

import "fmt"

// RFQStatus maps to the rfq_status enum in Postgres.
//
// OPEN -> QUOTED happens automatically on the first quote; QUOTED -> OPEN on
// deletion of the last quote; the buyer closes to CLOSED. EXPIRED is a
// housekeeping label written by the cron sweep. The expires_at timestamp
// comparison remains the authoritative expiry signal at read/write time.
type RFQStatus string

const (
	RFQStatusOpen    RFQStatus = "OPEN"
	RFQStatusQuoted  RFQStatus = "QUOTED"
	RFQStatusClosed  RFQStatus = "CLOSED"
	RFQStatusExpired RFQStatus = "EXPIRED"
)

var validRFQStatuses = []RFQStatus{
	RFQStatusOpen,
	RFQStatusQuoted,
	RFQStatusClosed,
	RFQStatusExpired,
}

// IsValid checks whether the given status matches the canonical enum.
func (s RFQStatus) IsValid() bool {
	for _, candidate := range validRFQStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRFQStatus converts raw strings into RFQStatus.
func ParseRFQStatus(value string) (RFQStatus, error) {
	for _, candidate := range validRFQStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rfq status %q", value)
}
