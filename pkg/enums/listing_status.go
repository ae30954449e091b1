package enums

import "fmt"

// ListingStatus is the public visibility state of a vehicle listing.
type ListingStatus string

const (
	ListingStatusDraft     ListingStatus = "draft"
	ListingStatusPublished ListingStatus = "published"
	ListingStatusUnlisted  ListingStatus = "unlisted"
	ListingStatusSold      ListingStatus = "sold"
)

var validListingStatuses = []ListingStatus{
	ListingStatusDraft,
	ListingStatusPublished,
	ListingStatusUnlisted,
	ListingStatusSold,
}

// String implements fmt.Stringer.
func (s ListingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ListingStatus.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
