package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/casavia/dealerdesk-backend/pkg/logger"
)

const (
	maxImageBytes     = 10 << 20
	relayBaseBackoff  = time.Second
	relayMaxAttempts  = 3
	relayFetchTimeout = 30 * time.Second
)

// ImageStore is the slice of the CDN client the relay needs.
type ImageStore interface {
	SanitizeID(raw string) string
	Upload(ctx context.Context, id string, data []byte, metadata map[string]string) (string, error)
	DeliveryURL(id string) string
}

// Relay mirrors vendor-hosted images into the managed image store.
type Relay struct {
	store      ImageStore
	httpClient *http.Client
	logg       *logger.Logger
	backoff    time.Duration
}

// NewRelay builds an image relay.
func NewRelay(store ImageStore, logg *logger.Logger) *Relay {
	return &Relay{
		store:      store,
		httpClient: &http.Client{Timeout: relayFetchTimeout},
		logg:       logg,
		backoff:    relayBaseBackoff,
	}
}

// MirrorImages downloads each source URL and re-uploads it under a sanitized
// "<prefix>-<index>" id, so re-runs overwrite instead of duplicating. The
// result always has the same cardinality as the input: a slot whose download
// or upload fails carries the original source URL as a fallback entry.
// Returns the output slice and the number of fallback slots.
func (r *Relay) MirrorImages(ctx context.Context, prefix string, sourceURLs []string) ([]string, int) {
	if len(sourceURLs) == 0 {
		return nil, 0
	}

	results := make([]string, len(sourceURLs))
	fallbacks := make([]bool, len(sourceURLs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(len(sourceURLs))
	for i, sourceURL := range sourceURLs {
		i, sourceURL := i, sourceURL
		group.Go(func() error {
			id := r.store.SanitizeID(fmt.Sprintf("%s-%d", prefix, i))
			deliveryURL, err := r.mirrorOne(groupCtx, id, sourceURL)
			if err != nil {
				if r.logg != nil {
					warnCtx := r.logg.WithFields(groupCtx, map[string]any{
						"source_url": sourceURL,
						"asset_id":   id,
						"error":      err.Error(),
					})
					r.logg.Warn(warnCtx, "image relay fell back to source url")
				}
				results[i] = sourceURL
				fallbacks[i] = true
				return nil
			}
			results[i] = deliveryURL
			return nil
		})
	}
	// Workers only ever return nil; failures become fallback entries.
	_ = group.Wait()

	fallbackCount := 0
	for _, fell := range fallbacks {
		if fell {
			fallbackCount++
		}
	}
	return results, fallbackCount
}

func (r *Relay) mirrorOne(ctx context.Context, id, sourceURL string) (string, error) {
	data, err := r.download(ctx, sourceURL)
	if err != nil {
		return "", err
	}

	backoff := retry.WithMaxRetries(relayMaxAttempts-1, retry.NewExponential(r.backoff))
	var assetID string
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		uploaded, uploadErr := r.store.Upload(ctx, id, data, map[string]string{"source_url": sourceURL})
		if uploadErr != nil {
			return retry.RetryableError(uploadErr)
		}
		assetID = uploaded
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", id, err)
	}
	return r.store.DeliveryURL(assetID), nil
}

func (r *Relay) download(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("download %s: status %d", sourceURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourceURL, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("download %s: payload exceeds %d bytes", sourceURL, maxImageBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("download %s: empty payload", sourceURL)
	}
	return data, nil
}
