package sync

import (
	"github.com/casavia/dealerdesk-backend/internal/scrape"
	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
)

// MatchedPair joins a freshly scraped vehicle with the persisted row it
// matched by identity key.
type MatchedPair struct {
	Scraped   scrape.Vehicle
	Persisted models.Vehicle
}

// DiffResult classifies one sync run's scrape against the vendor's persisted
// inventory.
type DiffResult struct {
	New       []scrape.Vehicle
	Updated   []MatchedPair
	Unchanged []MatchedPair
	Unlisted  []models.Vehicle
}

// Counts returns the run summary numbers in log order.
func (r DiffResult) Counts() (found, added, updated, unlisted int) {
	return len(r.New) + len(r.Updated) + len(r.Unchanged),
		len(r.New), len(r.Updated), len(r.Unlisted)
}

// Diff classifies each scraped vehicle as new, updated or unchanged, and
// collects persisted actives absent from the scrape as unlisted candidates.
//
// Identity is VIN equality when both sides carry one, stock number equality
// otherwise. Only price and odometer drive the updated classification; other
// field drift does not trigger a re-sync. Sold vehicles never become unlisted.
func Diff(scraped []scrape.Vehicle, persisted []models.Vehicle) DiffResult {
	byVIN := make(map[string]models.Vehicle)
	byStock := make(map[string]models.Vehicle)
	for _, row := range persisted {
		if row.VIN != "" {
			byVIN[row.VIN] = row
		}
		if row.StockNumber != "" {
			byStock[row.StockNumber] = row
		}
	}

	var result DiffResult
	seenKeys := make(map[string]struct{}, len(scraped))
	for _, vehicle := range scraped {
		match, ok := lookup(vehicle, byVIN, byStock)
		if !ok {
			result.New = append(result.New, vehicle)
			continue
		}
		seenKeys[match.IdentityKey()] = struct{}{}

		pair := MatchedPair{Scraped: vehicle, Persisted: match}
		if vehicle.Price != match.Price || vehicle.Odometer != match.Odometer {
			result.Updated = append(result.Updated, pair)
		} else {
			result.Unchanged = append(result.Unchanged, pair)
		}
	}

	for _, row := range persisted {
		if row.VendorStatus != enums.VendorStatusActive || row.IsSold {
			continue
		}
		if _, ok := seenKeys[row.IdentityKey()]; ok {
			continue
		}
		result.Unlisted = append(result.Unlisted, row)
	}
	return result
}

func lookup(vehicle scrape.Vehicle, byVIN, byStock map[string]models.Vehicle) (models.Vehicle, bool) {
	if vehicle.VIN != "" {
		if match, ok := byVIN[vehicle.VIN]; ok {
			return match, true
		}
	}
	if vehicle.StockNumber != "" {
		if match, ok := byStock[vehicle.StockNumber]; ok {
			return match, true
		}
	}
	return models.Vehicle{}, false
}
