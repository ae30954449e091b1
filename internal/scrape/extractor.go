package scrape

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrExtraction marks a detail page that could not yield the minimum fields.
// Callers skip the page and continue the run.
type ErrExtraction struct {
	PageURL string
	Reason  string
}

func (e *ErrExtraction) Error() string {
	return fmt.Sprintf("extract %s: %s", e.PageURL, e.Reason)
}

const (
	defaultFuelType     = "Gasoline"
	defaultBodyType     = "Sedan"
	defaultTransmission = "Automatic"
	vinLength           = 17
)

// Labeled-field patterns. Vendor pages in scope label specs in English or
// French ("Année", "Marque", "Kilométrage", "NIV"). Each pattern captures the
// raw value after the label, across simple tag boundaries.
var (
	titleRe = regexp.MustCompile(`<title[^>]*>([^<]+)</title>`)
	h1Re    = regexp.MustCompile(`<h1[^>]*>([^<]+)</h1>`)

	// "2021 Toyota Corolla LE" in a title or heading.
	yearMakeModelRe = regexp.MustCompile(`\b(19[5-9]\d|20[0-4]\d)\s+([A-Za-z][A-Za-z-]+)\s+([A-Za-z0-9][\w .-]*)`)

	yearLabelRe         = labeledField(`Ann[ée]e|Year`)
	makeLabelRe         = labeledField(`Marque|Make`)
	modelLabelRe        = labeledField(`Mod[èe]le|Model`)
	priceLabelRe        = labeledField(`Prix|Price`)
	odometerLabelRe     = labeledField(`Kilom[ée]trage|Odometer|Mileage|KM`)
	vinLabelRe          = labeledField(`NIV|VIN`)
	stockLabelRe        = labeledField(`Stock|No\.?\s*de\s*stock|Num[ée]ro\s*de\s*stock`)
	colorLabelRe        = labeledField(`Couleur(?:\s*ext[ée]rieure)?|(?:Exterior\s*)?Colou?r`)
	fuelLabelRe         = labeledField(`Carburant|Fuel(?:\s*Type)?`)
	transmissionLabelRe = labeledField(`Transmission`)
	bodyLabelRe         = labeledField(`Carrosserie|Body(?:\s*(?:Type|Style))?`)
	drivetrainLabelRe   = labeledField(`Motricit[ée]|Drivetrain|Drive\s*Train|Traction`)

	priceMetaRe = regexp.MustCompile(`(?i)itemprop="price"\s+content="([\d.,]+)"`)
	vinAnyRe    = regexp.MustCompile(`\b([A-HJ-NPR-Z0-9]{17})\b`)

	numericRe = regexp.MustCompile(`-?\d+`)
	tagRe     = regexp.MustCompile(`<[^>]*>`)
)

// labeledField builds a pattern matching `<label> ... : <value>` where the
// label and value may be separated by punctuation and up to two tags.
func labeledField(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)(?:` + label + `)\s*(?:</[^>]+>\s*)?(?::|</?[^>]+>){0,4}\s*([^<\n]{1,80})`)
}

// fieldStrategy is one way of locating a field's raw value in the page.
// Strategies are tried in order; the first non-empty result wins.
type fieldStrategy func(html string) string

func labeled(re *regexp.Regexp) fieldStrategy {
	return func(html string) string {
		if m := re.FindStringSubmatch(html); m != nil {
			return cleanValue(m[1])
		}
		return ""
	}
}

func fixed(value string) fieldStrategy {
	return func(string) string { return value }
}

func firstMatch(html string, strategies ...fieldStrategy) string {
	for _, strategy := range strategies {
		if v := strategy(html); v != "" {
			return v
		}
	}
	return ""
}

// Extractor turns a vendor detail page into a normalized vehicle record.
// Extraction is best-effort per field; only a page with neither a year nor a
// make fails.
type Extractor struct {
	maxImages int
}

// NewExtractor builds an extractor capping image collection at maxImages.
func NewExtractor(maxImages int) *Extractor {
	if maxImages <= 0 {
		maxImages = 15
	}
	return &Extractor{maxImages: maxImages}
}

// Extract parses one detail page. pageURL is used for relative image
// resolution and deterministic stock-number synthesis.
func (e *Extractor) Extract(html, pageURL string) (*Vehicle, error) {
	title := pageTitle(html)

	vehicle := &Vehicle{
		SourceURL: pageURL,
		ScrapedAt: time.Now().UTC(),
	}

	vehicle.Year = parseInt(firstMatch(html,
		labeled(yearLabelRe),
		titleYear(title),
	))
	vehicle.Make = firstMatch(html,
		labeled(makeLabelRe),
		titleMake(title),
	)
	vehicle.Model = firstMatch(html,
		labeled(modelLabelRe),
		titleModel(title),
	)

	if vehicle.Year == 0 && vehicle.Make == "" {
		return nil, &ErrExtraction{PageURL: pageURL, Reason: "no year or make found"}
	}

	vehicle.Price = parseInt(firstMatch(html,
		labeled(priceMetaRe),
		labeled(priceLabelRe),
	))
	vehicle.Odometer = parseInt(firstMatch(html,
		labeled(odometerLabelRe),
	))

	vehicle.VIN = validVIN(firstMatch(html,
		labeled(vinLabelRe),
		labeled(vinAnyRe),
	))
	vehicle.StockNumber = firstMatch(html,
		labeled(stockLabelRe),
	)
	if vehicle.VIN == "" && vehicle.StockNumber == "" {
		vehicle.StockNumber = SynthesizeStockNumber(pageURL)
	}

	vehicle.Color = NormalizeColor(firstMatch(html, labeled(colorLabelRe)))
	vehicle.FuelType = NormalizeFuelType(firstMatch(html,
		labeled(fuelLabelRe),
		fixed(defaultFuelType),
	))
	vehicle.Transmission = NormalizeTransmission(firstMatch(html,
		labeled(transmissionLabelRe),
		fixed(defaultTransmission),
	))
	vehicle.BodyType = NormalizeBodyType(firstMatch(html,
		labeled(bodyLabelRe),
		fixed(defaultBodyType),
	))
	vehicle.Drivetrain = NormalizeDrivetrain(firstMatch(html, labeled(drivetrainLabelRe)))

	vehicle.Images = CollectImages(html, pageURL, e.maxImages)

	return vehicle, nil
}

// SynthesizeStockNumber derives a stable identifier from the detail page URL
// so pages without a VIN or stock label still diff consistently across runs.
func SynthesizeStockNumber(pageURL string) string {
	sum := sha1.Sum([]byte(pageURL))
	return "AUTO-" + strings.ToUpper(hex.EncodeToString(sum[:])[:8])
}

func pageTitle(html string) string {
	if m := h1Re.FindStringSubmatch(html); m != nil {
		return cleanValue(m[1])
	}
	if m := titleRe.FindStringSubmatch(html); m != nil {
		return cleanValue(m[1])
	}
	return ""
}

func titleYear(title string) fieldStrategy {
	return func(string) string {
		if m := yearMakeModelRe.FindStringSubmatch(title); m != nil {
			return m[1]
		}
		return ""
	}
}

func titleMake(title string) fieldStrategy {
	return func(string) string {
		if m := yearMakeModelRe.FindStringSubmatch(title); m != nil {
			return m[2]
		}
		return ""
	}
}

func titleModel(title string) fieldStrategy {
	return func(string) string {
		if m := yearMakeModelRe.FindStringSubmatch(title); m != nil {
			return strings.TrimSpace(m[3])
		}
		return ""
	}
}

func cleanValue(raw string) string {
	value := tagRe.ReplaceAllString(raw, " ")
	value = strings.ReplaceAll(value, "&nbsp;", " ")
	value = strings.ReplaceAll(value, "&amp;", "&")
	value = strings.Join(strings.Fields(value), " ")
	return strings.Trim(value, " :-")
}

// parseInt strips currency symbols and thousands separators, then parses the
// first numeric run. Unparseable input yields 0.
func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	cleaned := strings.NewReplacer(",", "", " ", "", " ", "", "$", "", "€", "").Replace(raw)
	// Drop any decimal fraction; prices are whole currency units.
	if i := strings.IndexByte(cleaned, '.'); i >= 0 {
		cleaned = cleaned[:i]
	}
	m := numericRe.FindString(cleaned)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

func validVIN(raw string) string {
	vin := strings.ToUpper(strings.TrimSpace(raw))
	if len(vin) != vinLength {
		return ""
	}
	return vin
}
