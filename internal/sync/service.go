package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/casavia/dealerdesk-backend/internal/pricing"
	"github.com/casavia/dealerdesk-backend/internal/scrape"
	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
	"github.com/casavia/dealerdesk-backend/pkg/logger"
	"github.com/casavia/dealerdesk-backend/pkg/metrics"
)

// RunStage names the orchestrator's position in a vendor run.
type RunStage string

const (
	StageDiscovering    RunStage = "discovering"
	StageScraping       RunStage = "scraping"
	StageDiffing        RunStage = "diffing"
	StageImageUploading RunStage = "image_uploading"
	StagePersisting     RunStage = "persisting"
	StageLogged         RunStage = "logged"
)

// RunSummary is the caller-facing result of one vendor sync run.
type RunSummary struct {
	VendorID       uuid.UUID           `json:"vendor_id"`
	VendorName     string              `json:"vendor_name"`
	Status         enums.SyncRunStatus `json:"status"`
	VehiclesFound  int                 `json:"vehicles_found"`
	New            int                 `json:"new"`
	Updated        int                 `json:"updated"`
	Unchanged      int                 `json:"unchanged"`
	Unlisted       int                 `json:"unlisted"`
	ImagesUploaded bool                `json:"images_uploaded"`
	Errors         []string            `json:"errors,omitempty"`
	Duration       time.Duration       `json:"duration"`
}

// Service exposes vendor sync operations.
type Service interface {
	RunVendor(ctx context.Context, vendorID uuid.UUID) (*RunSummary, error)
	ListLogs(ctx context.Context, vendorID uuid.UUID, limit int) ([]models.VendorSyncLog, error)
}

type vendorLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

type pageFetcher interface {
	DiscoverListings(ctx context.Context, listingURL string, maxPages int) ([]string, error)
	FetchPage(ctx context.Context, pageURL string) (string, error)
}

type pageExtractor interface {
	Extract(html, pageURL string) (*scrape.Vehicle, error)
}

type imageMirror interface {
	MirrorImages(ctx context.Context, prefix string, sourceURLs []string) ([]string, int)
}

type repository interface {
	ListVendorVehicles(ctx context.Context, vendorID uuid.UUID) ([]models.Vehicle, error)
	InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error
	UpdateVehicleFromSync(ctx context.Context, id uuid.UUID, updates map[string]any) error
	MarkUnlisted(ctx context.Context, ids []uuid.UUID) error
	TouchVendorLastSync(ctx context.Context, vendorID uuid.UUID, at time.Time) error
	CreateSyncLog(ctx context.Context, log *models.VendorSyncLog) error
	ListSyncLogs(ctx context.Context, vendorID uuid.UUID, limit int) ([]models.VendorSyncLog, error)
}

type vendorLockGuard interface {
	Acquire(ctx context.Context, vendorID string) (string, error)
	Release(ctx context.Context, vendorID, owner string)
}

type service struct {
	repo         repository
	vendors      vendorLoader
	fetcher      pageFetcher
	extractor    pageExtractor
	relay        imageMirror
	lock         vendorLockGuard
	syncMetrics  *metrics.SyncMetrics
	logg         *logger.Logger
	requestDelay time.Duration
}

// NewService wires the orchestrator.
func NewService(
	repo repository,
	vendors vendorLoader,
	fetcher pageFetcher,
	extractor pageExtractor,
	relay imageMirror,
	lock vendorLockGuard,
	syncMetrics *metrics.SyncMetrics,
	logg *logger.Logger,
	requestDelay time.Duration,
) Service {
	if requestDelay <= 0 {
		requestDelay = 250 * time.Millisecond
	}
	return &service{
		repo:         repo,
		vendors:      vendors,
		fetcher:      fetcher,
		extractor:    extractor,
		relay:        relay,
		lock:         lock,
		syncMetrics:  syncMetrics,
		logg:         logg,
		requestDelay: requestDelay,
	}
}

// RunVendor executes the full pipeline for one vendor: discover, scrape,
// diff, mirror images for new vehicles, persist, log. The per-vendor lock
// serializes concurrent triggers; the second caller gets CodeSyncRunning.
func (s *service) RunVendor(ctx context.Context, vendorID uuid.UUID) (*RunSummary, error) {
	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading vendor")
	}

	owner, err := s.lock.Acquire(ctx, vendorID.String())
	if err != nil {
		return nil, err
	}
	defer s.lock.Release(ctx, vendorID.String(), owner)

	ctx = s.logg.WithVendorID(ctx, vendorID.String())
	started := time.Now()

	summary, runErr := s.run(ctx, vendor)
	summary.Duration = time.Since(started)
	summary.VendorID = vendor.ID
	summary.VendorName = vendor.Name

	s.writeLog(ctx, vendor, summary)
	s.syncMetrics.ObserveRun(vendor.Slug, summary.Status.String(), summary.Duration)
	s.syncMetrics.AddVehicles(vendor.Slug, "new", summary.New)
	s.syncMetrics.AddVehicles(vendor.Slug, "updated", summary.Updated)
	s.syncMetrics.AddVehicles(vendor.Slug, "unchanged", summary.Unchanged)
	s.syncMetrics.AddVehicles(vendor.Slug, "unlisted", summary.Unlisted)

	if runErr != nil {
		return summary, runErr
	}
	return summary, nil
}

func (s *service) run(ctx context.Context, vendor *models.Vendor) (*RunSummary, error) {
	summary := &RunSummary{Status: enums.SyncRunStatusFailed}
	var pageErrs []string

	s.logStage(ctx, StageDiscovering)
	detailURLs, err := s.fetcher.DiscoverListings(ctx, vendor.ListingURL, vendor.MaxPages)
	if err != nil {
		summary.Errors = append(summary.Errors, err.Error())
		return summary, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "discovering vendor listings")
	}
	if len(detailURLs) == 0 {
		summary.Errors = append(summary.Errors, "no detail pages discovered")
		return summary, pkgerrors.New(pkgerrors.CodeDependency, "no detail pages discovered")
	}

	// Sequential scrape with an inter-request delay to spare the vendor site.
	s.logStage(ctx, StageScraping)
	delay := s.requestDelay
	if vendor.ScrapeDelayMS > 0 {
		delay = time.Duration(vendor.ScrapeDelayMS) * time.Millisecond
	}
	var scraped []scrape.Vehicle
	for i, pageURL := range detailURLs {
		if i > 0 {
			select {
			case <-ctx.Done():
				summary.Errors = append(summary.Errors, ctx.Err().Error())
				return summary, pkgerrors.Wrap(pkgerrors.CodeInternal, ctx.Err(), "sync cancelled")
			case <-time.After(delay):
			}
		}

		html, err := s.fetcher.FetchPage(ctx, pageURL)
		if err != nil {
			pageErrs = append(pageErrs, err.Error())
			continue
		}
		vehicle, err := s.extractor.Extract(html, pageURL)
		if err != nil {
			pageErrs = append(pageErrs, err.Error())
			continue
		}
		scraped = append(scraped, *vehicle)
	}
	if len(scraped) == 0 {
		summary.Errors = append(pageErrs, "no vehicles extracted")
		return summary, pkgerrors.New(pkgerrors.CodeDependency, "no vehicles extracted from discovered pages")
	}

	s.logStage(ctx, StageDiffing)
	persisted, err := s.repo.ListVendorVehicles(ctx, vendor.ID)
	if err != nil {
		summary.Errors = append(pageErrs, err.Error())
		return summary, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading persisted vendor inventory")
	}
	diff := Diff(scraped, persisted)
	summary.VehiclesFound, summary.New, summary.Updated, summary.Unlisted = diff.Counts()
	summary.Unchanged = len(diff.Unchanged)

	// Images are mirrored only for new vehicles; updated vehicles keep their
	// stored images. The whole mirror pass completes before any row is
	// written.
	s.logStage(ctx, StageImageUploading)
	mirrored := make([][]string, len(diff.New))
	for i, vehicle := range diff.New {
		prefix := fmt.Sprintf("%s-%s", vendor.Slug, vehicle.IdentityKey())
		images, fallbacks := s.relay.MirrorImages(ctx, prefix, vehicle.Images)
		s.syncMetrics.AddImageFallbacks(vendor.Slug, fallbacks)
		if len(images)-fallbacks > 0 {
			summary.ImagesUploaded = true
		}
		mirrored[i] = images
	}

	s.logStage(ctx, StagePersisting)
	now := time.Now().UTC()
	var persistErr error
	for i, vehicle := range diff.New {
		if err := s.persistNew(ctx, vendor, vehicle, mirrored[i], now); err != nil {
			persistErr = multierr.Append(persistErr, fmt.Errorf("%s: %w", vehicle.IdentityKey(), err))
		}
	}
	for _, pair := range diff.Updated {
		if err := s.persistUpdated(ctx, vendor, pair, now); err != nil {
			persistErr = multierr.Append(persistErr, fmt.Errorf("%s: %w", pair.Persisted.IdentityKey(), err))
		}
	}
	for _, pair := range diff.Unchanged {
		if err := s.touchUnchanged(ctx, pair, now); err != nil {
			persistErr = multierr.Append(persistErr, fmt.Errorf("%s: %w", pair.Persisted.IdentityKey(), err))
		}
	}

	unlistedIDs := make([]uuid.UUID, 0, len(diff.Unlisted))
	for _, row := range diff.Unlisted {
		unlistedIDs = append(unlistedIDs, row.ID)
	}
	if err := s.repo.MarkUnlisted(ctx, unlistedIDs); err != nil {
		persistErr = multierr.Append(persistErr, fmt.Errorf("marking unlisted: %w", err))
	}

	if err := s.repo.TouchVendorLastSync(ctx, vendor.ID, now); err != nil {
		s.logg.Error(ctx, "updating vendor last sync time", err)
	}

	summary.Errors = pageErrs
	for _, err := range multierr.Errors(persistErr) {
		summary.Errors = append(summary.Errors, err.Error())
	}
	if len(summary.Errors) > 0 {
		summary.Status = enums.SyncRunStatusPartial
	} else {
		summary.Status = enums.SyncRunStatusSuccess
	}
	return summary, nil
}

func (s *service) persistNew(ctx context.Context, vendor *models.Vendor, vehicle scrape.Vehicle, images []string, now time.Time) error {
	markupType, markupValue := pricing.Resolve(
		enums.MarkupTypeVendorDefault, 0,
		vendor.DefaultMarkupType, vendor.DefaultMarkupValue,
	)

	row := &models.Vehicle{
		VIN:          vehicle.VIN,
		StockNumber:  vehicle.StockNumber,
		Make:         vehicle.Make,
		Model:        vehicle.Model,
		Year:         vehicle.Year,
		Price:        vehicle.Price,
		Odometer:     vehicle.Odometer,
		BodyType:     vehicle.BodyType,
		Color:        vehicle.Color,
		FuelType:     vehicle.FuelType,
		Transmission: vehicle.Transmission,
		Drivetrain:   vehicle.Drivetrain,
		Images:       images,
		SourceURL:    vehicle.SourceURL,

		VendorID:           &vendor.ID,
		VendorName:         vendor.Name,
		VendorStatus:       enums.VendorStatusActive,
		LastSeenFromVendor: &now,

		// New rows track the vendor's default markup until an admin overrides.
		PriceMarkupType:  enums.MarkupTypeVendorDefault,
		PriceMarkupValue: 0,
		DisplayPrice:     pricing.DisplayPrice(vehicle.Price, markupType, markupValue),

		ListingStatus: enums.ListingStatusPublished,
	}
	if vehicle.Description != "" {
		row.Description = &vehicle.Description
	}
	return s.repo.InsertVehicle(ctx, row)
}

func (s *service) persistUpdated(ctx context.Context, vendor *models.Vendor, pair MatchedPair, now time.Time) error {
	markupType, markupValue := pricing.Resolve(
		pair.Persisted.PriceMarkupType, pair.Persisted.PriceMarkupValue,
		vendor.DefaultMarkupType, vendor.DefaultMarkupValue,
	)

	updates := map[string]any{
		"price":                 pair.Scraped.Price,
		"odometer":              pair.Scraped.Odometer,
		"display_price":         pricing.DisplayPrice(pair.Scraped.Price, markupType, markupValue),
		"vendor_status":         enums.VendorStatusActive,
		"last_seen_from_vendor": now,
	}
	if pair.Scraped.Description != "" {
		updates["description"] = pair.Scraped.Description
	}
	return s.repo.UpdateVehicleFromSync(ctx, pair.Persisted.ID, updates)
}

func (s *service) touchUnchanged(ctx context.Context, pair MatchedPair, now time.Time) error {
	updates := map[string]any{
		"last_seen_from_vendor": now,
	}
	// A re-matched unlisted row reactivates.
	if pair.Persisted.VendorStatus != enums.VendorStatusActive {
		updates["vendor_status"] = enums.VendorStatusActive
	}
	return s.repo.UpdateVehicleFromSync(ctx, pair.Persisted.ID, updates)
}

func (s *service) logStage(ctx context.Context, stage RunStage) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithField(ctx, "stage", string(stage)), "sync stage")
}

func (s *service) writeLog(ctx context.Context, vendor *models.Vendor, summary *RunSummary) {
	log := &models.VendorSyncLog{
		VendorID:         vendor.ID,
		VendorName:       vendor.Name,
		SyncDate:         time.Now().UTC(),
		VehiclesFound:    summary.VehiclesFound,
		NewVehicles:      summary.New,
		UpdatedVehicles:  summary.Updated,
		UnlistedVehicles: summary.Unlisted,
		Status:           summary.Status,
		DurationSeconds:  summary.Duration.Seconds(),
	}
	if len(summary.Errors) > 0 {
		detail := ""
		for i, msg := range summary.Errors {
			if i > 0 {
				detail += "; "
			}
			detail += msg
		}
		log.ErrorDetail = &detail
	}
	if err := s.repo.CreateSyncLog(ctx, log); err != nil {
		s.logg.Error(ctx, "writing vendor sync log", err)
	}
	s.logStage(ctx, StageLogged)
}

// ListLogs returns the vendor's recent sync run summaries.
func (s *service) ListLogs(ctx context.Context, vendorID uuid.UUID, limit int) ([]models.VendorSyncLog, error) {
	logs, err := s.repo.ListSyncLogs(ctx, vendorID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing sync logs")
	}
	return logs, nil
}
