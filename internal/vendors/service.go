package vendors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casavia/dealerdesk-backend/pkg/db"
	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
)

var slugSanitizer = regexp.MustCompile(`[^a-z0-9]+`)

// Service exposes vendor management operations.
type Service interface {
	List(ctx context.Context) ([]models.Vendor, error)
	ListEnabled(ctx context.Context) ([]models.Vendor, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	GetBySlug(ctx context.Context, slug string) (*models.Vendor, error)
	Create(ctx context.Context, input CreateVendorInput) (*models.Vendor, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateVendorInput) (*models.Vendor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateVendorInput holds the validated payload to register a vendor.
type CreateVendorInput struct {
	Name               string
	Slug               string
	ListingURL         string
	BaseOrigin         string
	Enabled            bool
	DefaultMarkupType  enums.MarkupType
	DefaultMarkupValue float64
	ScrapeDelayMS      int
	MaxPages           int
}

// UpdateVendorInput holds optional mutation values for a vendor.
type UpdateVendorInput struct {
	Name               *string
	ListingURL         *string
	BaseOrigin         *string
	Enabled            *bool
	DefaultMarkupType  *enums.MarkupType
	DefaultMarkupValue *float64
	ScrapeDelayMS      *int
	MaxPages           *int
}

type vendorRepo interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	FindBySlug(ctx context.Context, slug string) (*models.Vendor, error)
	List(ctx context.Context) ([]models.Vendor, error)
	ListEnabled(ctx context.Context) ([]models.Vendor, error)
	Update(ctx context.Context, vendor *models.Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo vendorRepo
}

// NewService wires the vendor service.
func NewService(repo vendorRepo) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]models.Vendor, error) {
	vendors, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing vendors")
	}
	return vendors, nil
}

func (s *service) ListEnabled(ctx context.Context) ([]models.Vendor, error) {
	vendors, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing enabled vendors")
	}
	return vendors, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapVendorLookupError(err)
	}
	return vendor, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Vendor, error) {
	vendor, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, mapVendorLookupError(err)
	}
	return vendor, nil
}

func (s *service) Create(ctx context.Context, input CreateVendorInput) (*models.Vendor, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor name is required")
	}
	listingURL := strings.TrimSpace(input.ListingURL)
	if listingURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor listing url is required")
	}
	markupType := input.DefaultMarkupType
	if markupType == "" {
		markupType = enums.MarkupTypeNone
	}
	if !markupType.IsValid() || markupType == enums.MarkupTypeVendorDefault {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vendor default markup type")
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}

	vendor := &models.Vendor{
		Name:               name,
		Slug:               slug,
		ListingURL:         listingURL,
		BaseOrigin:         strings.TrimSpace(input.BaseOrigin),
		Enabled:            input.Enabled,
		DefaultMarkupType:  markupType,
		DefaultMarkupValue: input.DefaultMarkupValue,
		ScrapeDelayMS:      input.ScrapeDelayMS,
		MaxPages:           input.MaxPages,
	}
	if vendor.BaseOrigin == "" {
		vendor.BaseOrigin = originOf(listingURL)
	}
	if vendor.ScrapeDelayMS <= 0 {
		vendor.ScrapeDelayMS = 250
	}
	if vendor.MaxPages <= 0 {
		vendor.MaxPages = 10
	}

	if err := s.repo.Create(ctx, vendor); err != nil {
		if db.IsUniqueViolation(err, "vendors_slug_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a vendor with this slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating vendor")
	}
	return vendor, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateVendorInput) (*models.Vendor, error) {
	vendor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapVendorLookupError(err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor name cannot be empty")
		}
		vendor.Name = name
	}
	if input.ListingURL != nil {
		listingURL := strings.TrimSpace(*input.ListingURL)
		if listingURL == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor listing url cannot be empty")
		}
		vendor.ListingURL = listingURL
	}
	if input.BaseOrigin != nil {
		vendor.BaseOrigin = strings.TrimSpace(*input.BaseOrigin)
	}
	if input.Enabled != nil {
		vendor.Enabled = *input.Enabled
	}
	if input.DefaultMarkupType != nil {
		markupType := *input.DefaultMarkupType
		if !markupType.IsValid() || markupType == enums.MarkupTypeVendorDefault {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vendor default markup type")
		}
		vendor.DefaultMarkupType = markupType
	}
	if input.DefaultMarkupValue != nil {
		vendor.DefaultMarkupValue = *input.DefaultMarkupValue
	}
	if input.ScrapeDelayMS != nil && *input.ScrapeDelayMS > 0 {
		vendor.ScrapeDelayMS = *input.ScrapeDelayMS
	}
	if input.MaxPages != nil && *input.MaxPages > 0 {
		vendor.MaxPages = *input.MaxPages
	}

	if err := s.repo.Update(ctx, vendor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating vendor")
	}
	return vendor, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapVendorLookupError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting vendor")
	}
	return nil
}

// Slugify collapses a vendor name to a URL-safe identifier.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugSanitizer.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func originOf(rawURL string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	host, _, found := strings.Cut(trimmed, "/")
	if !found {
		host = trimmed
	}
	if host == "" {
		return ""
	}
	return "https://" + host
}

func mapVendorLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading vendor")
}
