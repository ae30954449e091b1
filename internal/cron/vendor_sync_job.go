package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/casavia/dealerdesk-backend/internal/sync"
	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
	"github.com/casavia/dealerdesk-backend/pkg/logger"
)

// VendorSyncJobParams configure the nightly vendor sync job.
type VendorSyncJobParams struct {
	Logger  *logger.Logger
	Vendors enabledVendorLister
	Runner  vendorSyncRunner
}

type enabledVendorLister interface {
	ListEnabled(ctx context.Context) ([]models.Vendor, error)
}

type vendorSyncRunner interface {
	RunVendor(ctx context.Context, vendorID uuid.UUID) (*sync.RunSummary, error)
}

// NewVendorSyncJob builds the job that syncs every enabled vendor.
func NewVendorSyncJob(params VendorSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Vendors == nil {
		return nil, fmt.Errorf("vendor lister required")
	}
	if params.Runner == nil {
		return nil, fmt.Errorf("sync runner required")
	}
	return &vendorSyncJob{
		logg:    params.Logger,
		vendors: params.Vendors,
		runner:  params.Runner,
	}, nil
}

type vendorSyncJob struct {
	logg    *logger.Logger
	vendors enabledVendorLister
	runner  vendorSyncRunner
}

func (j *vendorSyncJob) Name() string { return "vendor-sync" }

// Run syncs each enabled vendor in turn. One vendor failing does not stop
// the rest; a vendor already mid-sync is skipped, not failed.
func (j *vendorSyncJob) Run(ctx context.Context) error {
	vendors, err := j.vendors.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list enabled vendors: %w", err)
	}
	if len(vendors) == 0 {
		j.logg.Info(ctx, "no enabled vendors to sync")
		return nil
	}

	var errs error
	for _, vendor := range vendors {
		vendorCtx := j.logg.WithVendorID(ctx, vendor.ID.String())
		summary, runErr := j.runner.RunVendor(vendorCtx, vendor.ID)
		if runErr != nil {
			if typed := pkgerrors.As(runErr); typed != nil && typed.Code() == pkgerrors.CodeSyncRunning {
				j.logg.Warn(vendorCtx, "vendor sync already in progress; skipping")
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("vendor %s: %w", vendor.Slug, runErr))
		}
		if summary == nil {
			continue
		}
		resultCtx := j.logg.WithFields(vendorCtx, map[string]any{
			"status":    summary.Status.String(),
			"found":     summary.VehiclesFound,
			"new":       summary.New,
			"updated":   summary.Updated,
			"unchanged": summary.Unchanged,
			"unlisted":  summary.Unlisted,
		})
		j.logg.Info(resultCtx, "vendor sync finished")
	}
	return errs
}
