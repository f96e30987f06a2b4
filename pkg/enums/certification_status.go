package enums

import "fmt"

// CertificationStatus maps to the certification_status enum in Postgres.
type CertificationStatus string

const (
	CertificationStatusPending  CertificationStatus = "PENDING"
	CertificationStatusVerified CertificationStatus = "VERIFIED"
	CertificationStatusRejected CertificationStatus = "REJECTED"
)

var validCertificationStatuses = []CertificationStatus{
	CertificationStatusPending,
	CertificationStatusVerified,
	CertificationStatusRejected,
}

// reviewCertificationStatuses are the outcomes an admin review may assign.
var reviewCertificationStatuses = []CertificationStatus{
	CertificationStatusVerified,
	CertificationStatusRejected,
}

// IsValid checks whether the given status matches the canonical enum.
func (s CertificationStatus) IsValid() bool {
	for _, candidate := range validCertificationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsReviewOutcome reports whether an admin may assign this status.
func (s CertificationStatus) IsReviewOutcome() bool {
	for _, candidate := range reviewCertificationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCertificationStatus converts raw strings into CertificationStatus.
func ParseCertificationStatus(value string) (CertificationStatus, error) {
	for _, candidate := range validCertificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid certification status %q", value)
}
