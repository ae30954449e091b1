package sync

import (
	"testing"

	"github.com/google/uuid"

	"github.com/casavia/dealerdesk-backend/internal/scrape"
	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
)

func persistedVehicle(vin, stock string, price, odometer int) models.Vehicle {
	return models.Vehicle{
		ID:           uuid.New(),
		VIN:          vin,
		StockNumber:  stock,
		Price:        price,
		Odometer:     odometer,
		VendorStatus: enums.VendorStatusActive,
	}
}

func TestDiffClassifiesByVIN(t *testing.T) {
	persisted := []models.Vehicle{
		persistedVehicle("1HGCM82633A004352", "A1", 20000, 50000),
	}
	scraped := []scrape.Vehicle{
		{VIN: "1HGCM82633A004352", StockNumber: "A1", Price: 20000, Odometer: 50000},
	}

	result := Diff(scraped, persisted)

	if len(result.New) != 0 {
		t.Errorf("unchanged VIN classified as new: %+v", result.New)
	}
	if len(result.Unchanged) != 1 {
		t.Fatalf("expected 1 unchanged, got %d", len(result.Unchanged))
	}
	if len(result.Unlisted) != 0 {
		t.Errorf("matched vehicle listed as unlisted candidate")
	}
}

func TestDiffPriceOrOdometerDriveUpdated(t *testing.T) {
	persisted := []models.Vehicle{
		persistedVehicle("1HGCM82633A004352", "A1", 20000, 50000),
		persistedVehicle("2T1BURHE5MC123456", "A2", 18000, 30000),
	}
	scraped := []scrape.Vehicle{
		{VIN: "1HGCM82633A004352", Price: 19500, Odometer: 50000},
		{VIN: "2T1BURHE5MC123456", Price: 18000, Odometer: 31000},
	}

	result := Diff(scraped, persisted)

	if len(result.Updated) != 2 {
		t.Fatalf("expected both vehicles updated, got %d", len(result.Updated))
	}
}

func TestDiffOtherFieldDriftIsUnchanged(t *testing.T) {
	row := persistedVehicle("1HGCM82633A004352", "A1", 20000, 50000)
	row.Color = "Black"
	scraped := []scrape.Vehicle{
		{VIN: "1HGCM82633A004352", Price: 20000, Odometer: 50000, Color: "White"},
	}

	result := Diff(scraped, []models.Vehicle{row})

	if len(result.Unchanged) != 1 {
		t.Fatalf("color drift must not classify as updated: %+v", result)
	}
}

func TestDiffSetDifference(t *testing.T) {
	a := persistedVehicle("", "A", 10000, 1000)
	b := persistedVehicle("", "B", 11000, 2000)
	c := persistedVehicle("", "C", 12000, 3000)
	scraped := []scrape.Vehicle{
		{StockNumber: "A", Price: 10000, Odometer: 1000},
		{StockNumber: "C", Price: 12000, Odometer: 3000},
	}

	result := Diff(scraped, []models.Vehicle{a, b, c})

	if len(result.Unlisted) != 1 || result.Unlisted[0].StockNumber != "B" {
		t.Fatalf("expected exactly B unlisted, got %+v", result.Unlisted)
	}
	if len(result.New) != 0 {
		t.Errorf("A and C must not be duplicated as new")
	}
}

func TestDiffSoldVehiclesNeverUnlisted(t *testing.T) {
	sold := persistedVehicle("", "S1", 15000, 40000)
	sold.IsSold = true

	result := Diff(nil, []models.Vehicle{sold})

	if len(result.Unlisted) != 0 {
		t.Errorf("sold vehicle offered as unlisted candidate")
	}
}

func TestDiffAlreadyUnlistedNotRepeated(t *testing.T) {
	gone := persistedVehicle("", "G1", 15000, 40000)
	gone.VendorStatus = enums.VendorStatusUnlisted

	result := Diff(nil, []models.Vehicle{gone})

	if len(result.Unlisted) != 0 {
		t.Errorf("already-unlisted vehicle offered again as candidate")
	}
}

func TestDiffStockFallbackWhenVINAbsent(t *testing.T) {
	persisted := []models.Vehicle{persistedVehicle("", "AUTO-1A2B3C4D", 9000, 120000)}
	scraped := []scrape.Vehicle{
		{StockNumber: "AUTO-1A2B3C4D", Price: 9500, Odometer: 120000},
	}

	result := Diff(scraped, persisted)

	if len(result.Updated) != 1 {
		t.Fatalf("stock-number identity match failed: %+v", result)
	}
}

func TestDiffUnmatchedIsNew(t *testing.T) {
	result := Diff([]scrape.Vehicle{{VIN: "1HGCM82633A004352", StockNumber: "Z9"}}, nil)

	if len(result.New) != 1 {
		t.Fatalf("expected 1 new vehicle, got %+v", result)
	}
	found, added, updated, unlisted := result.Counts()
	if found != 1 || added != 1 || updated != 0 || unlisted != 0 {
		t.Errorf("Counts() = %d %d %d %d", found, added, updated, unlisted)
	}
}
