package inventory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	"github.com/casavia/dealerdesk-backend/pkg/pagination"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  vin TEXT,
  stock_number TEXT NOT NULL,
  make TEXT NOT NULL,
  model TEXT NOT NULL,
  year INTEGER NOT NULL,
  price INTEGER NOT NULL DEFAULT 0,
  odometer INTEGER NOT NULL DEFAULT 0,
  body_type TEXT,
  color TEXT,
  fuel_type TEXT,
  transmission TEXT,
  drivetrain TEXT,
  description TEXT,
  images TEXT,
  source_url TEXT,
  vendor_id TEXT,
  vendor_name TEXT,
  vendor_status TEXT NOT NULL DEFAULT 'active',
  last_seen_from_vendor DATETIME,
  price_markup_type TEXT NOT NULL DEFAULT 'vendor_default',
  price_markup_value REAL NOT NULL DEFAULT 0,
  display_price INTEGER NOT NULL DEFAULT 0,
  is_sold INTEGER NOT NULL DEFAULT 0,
  listing_status TEXT NOT NULL DEFAULT 'draft',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedInventory(t *testing.T, db *gorm.DB, n int, status enums.ListingStatus) []*models.Vehicle {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	var out []*models.Vehicle
	for i := 0; i < n; i++ {
		vehicle := &models.Vehicle{
			ID:            uuid.New(),
			StockNumber:   fmt.Sprintf("S%02d", i),
			Make:          "Toyota",
			Model:         "Corolla",
			Year:          2021,
			Price:         20000 + i,
			ListingStatus: status,
			VendorStatus:  enums.VendorStatusActive,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(vehicle).Error)
		out = append(out, vehicle)
	}
	return out
}

func TestListFiltersByListingStatus(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedInventory(t, db, 2, enums.ListingStatusPublished)
	seedInventory(t, db, 3, enums.ListingStatusDraft)

	status := enums.ListingStatusDraft
	vehicles, err := repo.List(ctx, ListFilter{ListingStatus: &status}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, vehicles, 3)
}

func TestListCursorPagination(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedInventory(t, db, 5, enums.ListingStatusPublished)

	first, err := repo.List(ctx, ListFilter{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 3, "limit+1 buffer row expected")

	cursor := pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: first[1].CreatedAt,
		ID:        first[1].ID,
	})
	second, err := repo.List(ctx, ListFilter{}, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.NotEmpty(t, second)

	for _, vehicle := range second {
		assert.True(t, vehicle.CreatedAt.Before(first[1].CreatedAt) ||
			vehicle.CreatedAt.Equal(first[1].CreatedAt),
			"cursor page must not repeat newer rows")
		assert.NotEqual(t, first[0].ID, vehicle.ID)
		assert.NotEqual(t, first[1].ID, vehicle.ID)
	}
}

func TestListPublishedExcludesSoldAndDraft(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	published := seedInventory(t, db, 2, enums.ListingStatusPublished)
	seedInventory(t, db, 1, enums.ListingStatusDraft)

	sold := published[0]
	sold.IsSold = true
	sold.ListingStatus = enums.ListingStatusSold
	require.NoError(t, db.Save(sold).Error)

	vehicles, err := repo.ListPublished(ctx, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, published[1].ID, vehicles[0].ID)
}

func TestListAllImageRefs(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vehicle := &models.Vehicle{
		ID:          uuid.New(),
		StockNumber: "S1",
		Make:        "Toyota",
		Model:       "Corolla",
		Year:        2021,
		Images:      []string{"https://cdn.example.com/a/public", "https://cdn.example.com/b/public"},
	}
	require.NoError(t, db.Create(vehicle).Error)

	refs, err := repo.ListAllImageRefs(ctx)
	require.NoError(t, err)
	assert.Len(t, refs, 2)
}
