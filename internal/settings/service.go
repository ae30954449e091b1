package settings

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
	"github.com/casavia/dealerdesk-backend/pkg/logger"
)

// Well-known setting keys.
const (
	KeyAIDescriptionGenerator = "ai.description_generator.enabled"
	KeyAILeadScoring          = "ai.lead_scoring.enabled"
	KeySiteHomepage           = "site.homepage"
)

const cacheTTL = 10 * time.Minute

// Service exposes site settings backed by the database, with a best-effort
// redis read-through cache. The database is the single source of truth; a
// cache failure never fails the caller.
type Service interface {
	List(ctx context.Context) ([]models.SiteSetting, error)
	Get(ctx context.Context, key string) (*models.SiteSetting, error)
	Put(ctx context.Context, key, value string) (*models.SiteSetting, error)
	IsEnabled(ctx context.Context, key string) bool
}

type settingsRepo interface {
	Get(ctx context.Context, key string) (*models.SiteSetting, error)
	List(ctx context.Context) ([]models.SiteSetting, error)
	Upsert(ctx context.Context, setting *models.SiteSetting) error
}

type settingsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SettingKey(name string) string
}

type service struct {
	repo  settingsRepo
	cache settingsCache
	logg  *logger.Logger
}

// NewService wires the settings service. cache may be nil.
func NewService(repo settingsRepo, cache settingsCache, logg *logger.Logger) Service {
	return &service{repo: repo, cache: cache, logg: logg}
}

func (s *service) List(ctx context.Context) ([]models.SiteSetting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing settings")
	}
	return settings, nil
}

func (s *service) Get(ctx context.Context, key string) (*models.SiteSetting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting key is required")
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, s.cache.SettingKey(key)); err == nil && cached != "" {
			return &models.SiteSetting{Key: key, Value: cached}, nil
		}
	}

	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading setting")
	}
	s.cacheWrite(ctx, key, setting.Value)
	return setting, nil
}

func (s *service) Put(ctx context.Context, key, value string) (*models.SiteSetting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting key is required")
	}
	if !json.Valid([]byte(value)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting value must be valid JSON")
	}

	setting := &models.SiteSetting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving setting")
	}
	// Cache refresh after the write commits; the db already holds the truth.
	s.cacheWrite(ctx, key, value)
	return setting, nil
}

// IsEnabled reads a boolean feature toggle. Missing keys, unreadable values
// and cache failures all read as disabled.
func (s *service) IsEnabled(ctx context.Context, key string) bool {
	setting, err := s.Get(ctx, key)
	if err != nil {
		return false
	}
	var enabled bool
	if err := json.Unmarshal([]byte(setting.Value), &enabled); err == nil {
		return enabled
	}
	var wrapped struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.Unmarshal([]byte(setting.Value), &wrapped); err == nil {
		return wrapped.Enabled
	}
	return false
}

func (s *service) cacheWrite(ctx context.Context, key, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.SettingKey(key), value, cacheTTL); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "setting_key", key), "settings cache write failed")
	}
}
