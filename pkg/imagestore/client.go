package imagestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/casavia/dealerdesk-backend/pkg/config"
	"github.com/casavia/dealerdesk-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

var idSanitizer = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Client talks to the managed image CDN the sync pipeline mirrors vendor
// images into.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accountID   string
	apiToken    string
	deliveryURL string
	maxIDLength int
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient builds an image store client from configuration.
func NewClient(ctx context.Context, cfg config.ImageStoreConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("image store base url is required")
	}
	if cfg.AccountID == "" {
		return nil, errors.New("image store account id is required")
	}
	if cfg.APIToken == "" {
		return nil, errors.New("image store api token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxID := cfg.MaxIDLength
	if maxID <= 0 {
		maxID = 100
	}

	client := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accountID:   cfg.AccountID,
		apiToken:    cfg.APIToken,
		deliveryURL: strings.TrimRight(cfg.DeliveryURL, "/"),
		maxIDLength: maxID,
	}

	if logg != nil {
		logg.Info(ctx, "image store client initialized")
	}

	return client, nil
}

// SanitizeID collapses non-alphanumeric runs to '-' and truncates to the
// store's identifier limit. The same input always yields the same id, so
// re-uploads overwrite instead of duplicating.
func (c *Client) SanitizeID(raw string) string {
	id := idSanitizer.ReplaceAllString(raw, "-")
	id = strings.Trim(id, "-")
	if len(id) > c.maxIDLength {
		id = id[:c.maxIDLength]
	}
	return strings.ToLower(id)
}

// DeliveryURL returns the public retrieval URL for an uploaded asset id.
func (c *Client) DeliveryURL(id string) string {
	return fmt.Sprintf("%s/%s/public", c.deliveryURL, id)
}

type uploadResponse struct {
	Success bool `json:"success"`
	Result  struct {
		ID string `json:"id"`
	} `json:"result"`
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Upload posts the image bytes under the provided id, overwriting any
// existing asset with the same id. Returns the asset id the store assigned.
func (c *Client) Upload(ctx context.Context, id string, data []byte, metadata map[string]string) (string, error) {
	if id == "" {
		return "", errors.New("asset id is required")
	}
	if len(data) == 0 {
		return "", errors.New("image payload is empty")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", id)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write image payload: %w", err)
	}
	if err := writer.WriteField("id", id); err != nil {
		return "", fmt.Errorf("write id field: %w", err)
	}
	if len(metadata) > 0 {
		meta, err := json.Marshal(metadata)
		if err != nil {
			return "", fmt.Errorf("marshal metadata: %w", err)
		}
		if err := writer.WriteField("metadata", string(meta)); err != nil {
			return "", fmt.Errorf("write metadata field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/accounts/%s/images/v1", c.baseURL, c.accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}

	var decoded uploadResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("decode upload response (status %d): %w", resp.StatusCode, err)
	}
	if !decoded.Success {
		if len(decoded.Errors) > 0 {
			return "", fmt.Errorf("upload rejected (status %d): %s", resp.StatusCode, decoded.Errors[0].Message)
		}
		return "", fmt.Errorf("upload rejected (status %d)", resp.StatusCode)
	}

	if decoded.Result.ID != "" {
		return decoded.Result.ID, nil
	}
	return id, nil
}

type listResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Images []struct {
			ID string `json:"id"`
		} `json:"images"`
	} `json:"result"`
}

// List returns the ids of every asset in the store, walking the paginated
// listing endpoint until a short page comes back.
func (c *Client) List(ctx context.Context) ([]string, error) {
	const perPage = 100

	var ids []string
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/accounts/%s/images/v1?page=%d&per_page=%d", c.baseURL, c.accountID, page, perPage)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build list request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("list request: %w", err)
		}
		payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read list response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("list rejected (status %d)", resp.StatusCode)
		}

		var decoded listResponse
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, fmt.Errorf("decode list response: %w", err)
		}
		if !decoded.Success {
			return nil, fmt.Errorf("list rejected (status %d)", resp.StatusCode)
		}
		for _, image := range decoded.Result.Images {
			ids = append(ids, image.ID)
		}
		if len(decoded.Result.Images) < perPage {
			return ids, nil
		}
	}
}

// Delete removes an asset by id. Missing assets are treated as deleted.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("asset id is required")
	}

	url := fmt.Sprintf("%s/accounts/%s/images/v1/%s", c.baseURL, c.accountID, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("delete rejected (status %d)", resp.StatusCode)
	}
	return nil
}

// Ping verifies the store credentials by listing a single asset.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/accounts/%s/images/v1?per_page=1", c.baseURL, c.accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("image store ping failed (status %d)", resp.StatusCode)
	}
	return nil
}
