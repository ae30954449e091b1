package enums

import "fmt"

// VendorStatus tracks whether a vendor-sourced vehicle is still observed on
// the vendor's site.
type VendorStatus string

const (
	VendorStatusActive   VendorStatus = "active"
	VendorStatusUnlisted VendorStatus = "unlisted"
)

var validVendorStatuses = []VendorStatus{
	VendorStatusActive,
	VendorStatusUnlisted,
}

// String implements fmt.Stringer.
func (s VendorStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known VendorStatus.
func (s VendorStatus) IsValid() bool {
	for _, candidate := range validVendorStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseVendorStatus converts raw input into a VendorStatus.
func ParseVendorStatus(value string) (VendorStatus, error) {
	for _, candidate := range validVendorStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor status %q", value)
}
