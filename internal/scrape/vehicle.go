package scrape

import "time"

// Vehicle is the transient record produced by the extractor for one vendor
// detail page. It carries source image URLs, not CDN ids.
type Vehicle struct {
	VIN         string
	StockNumber string
	Make        string
	Model       string
	Year        int
	Price       int
	Odometer    int

	BodyType     string
	Color        string
	FuelType     string
	Transmission string
	Drivetrain   string
	Description  string

	Images    []string
	SourceURL string
	ScrapedAt time.Time
}

// IdentityKey mirrors the persisted vehicle's diff key: VIN when present,
// stock number otherwise.
func (v Vehicle) IdentityKey() string {
	if v.VIN != "" {
		return "vin:" + v.VIN
	}
	return "stock:" + v.StockNumber
}
