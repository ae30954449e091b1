package enums

import "fmt"

// MarkupType selects how a vendor vehicle's display price is derived from its
// base price.
type MarkupType string

const (
	MarkupTypeNone          MarkupType = "none"
	MarkupTypeAmount        MarkupType = "amount"
	MarkupTypePercentage    MarkupType = "percentage"
	MarkupTypeVendorDefault MarkupType = "vendor_default"
)

var validMarkupTypes = []MarkupType{
	MarkupTypeNone,
	MarkupTypeAmount,
	MarkupTypePercentage,
	MarkupTypeVendorDefault,
}

// String implements fmt.Stringer.
func (m MarkupType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MarkupType.
func (m MarkupType) IsValid() bool {
	for _, candidate := range validMarkupTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMarkupType converts raw input into a MarkupType.
func ParseMarkupType(value string) (MarkupType, error) {
	for _, candidate := range validMarkupTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid markup type %q", value)
}
