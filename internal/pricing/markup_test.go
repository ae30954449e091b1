package pricing

import (
	"testing"

	"github.com/casavia/dealerdesk-backend/pkg/enums"
)

func TestDisplayPrice(t *testing.T) {
	cases := []struct {
		name       string
		base       int
		markupType enums.MarkupType
		value      float64
		want       int
	}{
		{"noneIgnoresValue", 20000, enums.MarkupTypeNone, 9999, 20000},
		{"amountZero", 20000, enums.MarkupTypeAmount, 0, 20000},
		{"percentageZero", 20000, enums.MarkupTypePercentage, 0, 20000},
		{"amount", 20000, enums.MarkupTypeAmount, 1500, 21500},
		{"percentage", 20000, enums.MarkupTypePercentage, 10, 22000},
		{"percentageFraction", 19999, enums.MarkupTypePercentage, 7.5, 21499},
		{"negativeAmount", 20000, enums.MarkupTypeAmount, -500, 19500},
		{"negativePercentageNoFloor", 1000, enums.MarkupTypePercentage, -150, -500},
		{"unresolvedVendorDefaultActsAsNone", 20000, enums.MarkupTypeVendorDefault, 1500, 20000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DisplayPrice(tc.base, tc.markupType, tc.value); got != tc.want {
				t.Errorf("DisplayPrice(%d, %s, %v) = %d, want %d",
					tc.base, tc.markupType, tc.value, got, tc.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	gotType, gotValue := Resolve(enums.MarkupTypeAmount, 500, enums.MarkupTypePercentage, 10)
	if gotType != enums.MarkupTypeAmount || gotValue != 500 {
		t.Errorf("vehicle override must win, got %s %v", gotType, gotValue)
	}

	gotType, gotValue = Resolve(enums.MarkupTypeVendorDefault, 0, enums.MarkupTypePercentage, 10)
	if gotType != enums.MarkupTypePercentage || gotValue != 10 {
		t.Errorf("vendor_default must resolve to the vendor policy, got %s %v", gotType, gotValue)
	}

	gotType, gotValue = Resolve(enums.MarkupTypeVendorDefault, 0, enums.MarkupTypeVendorDefault, 0)
	if gotType != enums.MarkupTypeNone || gotValue != 0 {
		t.Errorf("self-referential vendor default must degrade to none, got %s %v", gotType, gotValue)
	}
}
