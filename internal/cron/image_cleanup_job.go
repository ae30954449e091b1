package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/casavia/dealerdesk-backend/pkg/logger"
)

// ImageCleanupJobParams configure the orphaned CDN image cleanup job.
type ImageCleanupJobParams struct {
	Logger    *logger.Logger
	Store     cleanupImageStore
	Inventory imageRefLister
}

type cleanupImageStore interface {
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
	DeliveryURL(id string) string
}

type imageRefLister interface {
	ListAllImageRefs(ctx context.Context) ([]string, error)
}

// NewImageCleanupJob builds the job that deletes CDN assets no vehicle
// references anymore.
func NewImageCleanupJob(params ImageCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("image store required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &imageCleanupJob{
		logg:      params.Logger,
		store:     params.Store,
		inventory: params.Inventory,
	}, nil
}

type imageCleanupJob struct {
	logg      *logger.Logger
	store     cleanupImageStore
	inventory imageRefLister
}

func (j *imageCleanupJob) Name() string { return "orphan-image-cleanup" }

// Run deletes every stored asset whose delivery URL no vehicle row carries.
// Vehicle image slots holding vendor source URLs never match a delivery URL,
// so fallback slots are ignored here.
func (j *imageCleanupJob) Run(ctx context.Context) error {
	refs, err := j.inventory.ListAllImageRefs(ctx)
	if err != nil {
		return fmt.Errorf("list vehicle image refs: %w", err)
	}
	referenced := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		referenced[ref] = struct{}{}
	}

	ids, err := j.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list stored assets: %w", err)
	}

	var deleted int
	var errs error
	for _, id := range ids {
		if _, ok := referenced[j.store.DeliveryURL(id)]; ok {
			continue
		}
		if err := j.store.Delete(ctx, id); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete asset %s: %w", id, err))
			continue
		}
		deleted++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"assets_stored":  len(ids),
		"refs_in_use":    len(referenced),
		"assets_deleted": deleted,
	})
	j.logg.Info(logCtx, "orphan image cleanup complete")
	return errs
}
