package scrape

import "strings"

// Bilingual keyword-containment tables. Vendor sites in the region mix
// English and French; unrecognized values pass through unchanged.

var colorTable = []normalizeEntry{
	{[]string{"noir", "black"}, "Black"},
	{[]string{"blanc", "white"}, "White"},
	{[]string{"argent", "silver"}, "Silver"},
	{[]string{"gris", "grey", "gray", "charcoal"}, "Grey"},
	{[]string{"rouge", "red"}, "Red"},
	{[]string{"bleu", "blue"}, "Blue"},
	{[]string{"vert", "green"}, "Green"},
	{[]string{"brun", "brown"}, "Brown"},
	{[]string{"beige", "tan"}, "Beige"},
	{[]string{"jaune", "yellow"}, "Yellow"},
	{[]string{"orange"}, "Orange"},
}

var fuelTable = []normalizeEntry{
	{[]string{"hybride", "hybrid"}, "Hybrid"},
	{[]string{"électrique", "electrique", "electric"}, "Electric"},
	{[]string{"diesel"}, "Diesel"},
	{[]string{"essence", "gasoline", "gas", "petrol"}, "Gasoline"},
}

var transmissionTable = []normalizeEntry{
	{[]string{"cvt"}, "CVT"},
	{[]string{"manuelle", "manual"}, "Manual"},
	{[]string{"automatique", "automatic", "auto"}, "Automatic"},
}

var bodyTypeTable = []normalizeEntry{
	{[]string{"berline", "sedan"}, "Sedan"},
	{[]string{"vus", "suv", "utilitaire"}, "SUV"},
	{[]string{"camion", "truck", "pickup", "pick-up"}, "Truck"},
	{[]string{"fourgonnette", "minivan", "van"}, "Van"},
	{[]string{"coupé", "coupe"}, "Coupe"},
	{[]string{"cabriolet", "convertible", "décapotable"}, "Convertible"},
	{[]string{"familiale", "wagon"}, "Wagon"},
	{[]string{"hayon", "hatchback"}, "Hatchback"},
}

var drivetrainTable = []normalizeEntry{
	{[]string{"intégrale", "integrale", "awd", "all-wheel"}, "AWD"},
	{[]string{"4x4", "4wd", "four-wheel"}, "4x4"},
	{[]string{"propulsion", "rwd", "rear-wheel"}, "RWD"},
	{[]string{"traction", "fwd", "front-wheel"}, "FWD"},
}

type normalizeEntry struct {
	keywords []string
	value    string
}

func normalizeAgainst(table []normalizeEntry, raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	lowered := strings.ToLower(value)
	for _, entry := range table {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.value
			}
		}
	}
	return value
}

// NormalizeColor maps a raw scraped color onto the canonical English value.
func NormalizeColor(raw string) string {
	return normalizeAgainst(colorTable, raw)
}

// NormalizeFuelType maps a raw scraped fuel type onto the canonical value.
func NormalizeFuelType(raw string) string {
	return normalizeAgainst(fuelTable, raw)
}

// NormalizeTransmission maps a raw transmission string onto the canonical value.
func NormalizeTransmission(raw string) string {
	return normalizeAgainst(transmissionTable, raw)
}

// NormalizeBodyType maps a raw body style onto the canonical value.
func NormalizeBodyType(raw string) string {
	return normalizeAgainst(bodyTypeTable, raw)
}

// NormalizeDrivetrain maps a raw drivetrain string onto the canonical value.
func NormalizeDrivetrain(raw string) string {
	return normalizeAgainst(drivetrainTable, raw)
}
