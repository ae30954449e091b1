package pricing

import (
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// DisplayPrice computes the customer-facing price from a base price and a
// markup policy. Prices are whole currency units.
//
// MarkupTypeVendorDefault must be resolved by the caller before the final
// computation; an unresolved vendor_default is treated as none here.
// Negative markup values are permitted and simply lower the result.
func DisplayPrice(basePrice int, markupType enums.MarkupType, markupValue float64) int {
	switch markupType {
	case enums.MarkupTypeAmount:
		return basePrice + int(markupValue)
	case enums.MarkupTypePercentage:
		base := decimal.NewFromInt(int64(basePrice))
		pct := decimal.NewFromFloat(markupValue).Div(decimal.NewFromInt(100))
		return int(base.Add(base.Mul(pct)).Round(0).IntPart())
	default:
		return basePrice
	}
}

// Resolve maps a vehicle-level markup policy onto the vendor default when the
// vehicle defers to it. The returned type is never vendor_default.
func Resolve(vehicleType enums.MarkupType, vehicleValue float64, vendorType enums.MarkupType, vendorValue float64) (enums.MarkupType, float64) {
	if vehicleType != enums.MarkupTypeVendorDefault {
		return vehicleType, vehicleValue
	}
	if vendorType == enums.MarkupTypeVendorDefault {
		// A vendor cannot defer to itself.
		return enums.MarkupTypeNone, 0
	}
	return vendorType, vendorValue
}
