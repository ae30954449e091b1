package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every DealerDesk environment variable.
	EnvPrefix = "DEALERDESK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "DEALERDESK_DB_DSN"
	EnvDBHost = "DEALERDESK_DB_HOST"
	EnvDBUser = "DEALERDESK_DB_USER"
	EnvDBName = "DEALERDESK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	ImageStore   ImageStoreConfig
	Sync         SyncConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DEALERDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"DEALERDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DEALERDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DEALERDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DEALERDESK_DB_DSN"`
	Driver string `envconfig:"DEALERDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DEALERDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"DEALERDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DEALERDESK_DB_USER"`
	LegacyPassword string `envconfig:"DEALERDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"DEALERDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"DEALERDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DEALERDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DEALERDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DEALERDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DEALERDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DEALERDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DEALERDESK_REDIS_ADDR"`
	Password     string        `envconfig:"DEALERDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"DEALERDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DEALERDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DEALERDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DEALERDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DEALERDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DEALERDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DEALERDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DEALERDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DEALERDESK_JWT_EXPIRATION_MINUTES" default:"720"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DEALERDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DEALERDESK_AUTO_MIGRATE" default:"false"`
}

// ImageStoreConfig points at the managed image CDN the relay mirrors into.
type ImageStoreConfig struct {
	BaseURL      string        `envconfig:"DEALERDESK_IMAGE_STORE_BASE_URL" required:"true"`
	AccountID    string        `envconfig:"DEALERDESK_IMAGE_STORE_ACCOUNT_ID" required:"true"`
	APIToken     string        `envconfig:"DEALERDESK_IMAGE_STORE_API_TOKEN" required:"true"`
	DeliveryURL  string        `envconfig:"DEALERDESK_IMAGE_STORE_DELIVERY_URL" required:"true"`
	Timeout      time.Duration `envconfig:"DEALERDESK_IMAGE_STORE_TIMEOUT" default:"30s"`
	MaxImageMB   int           `envconfig:"DEALERDESK_IMAGE_STORE_MAX_IMAGE_MB" default:"10"`
	MaxIDLength  int           `envconfig:"DEALERDESK_IMAGE_STORE_MAX_ID_LENGTH" default:"100"`
}

type SyncConfig struct {
	RequestDelay    time.Duration `envconfig:"DEALERDESK_SYNC_REQUEST_DELAY" default:"250ms"`
	FetchTimeout    time.Duration `envconfig:"DEALERDESK_SYNC_FETCH_TIMEOUT" default:"20s"`
	MaxPagesDefault int           `envconfig:"DEALERDESK_SYNC_MAX_PAGES" default:"10"`
	MaxImages       int           `envconfig:"DEALERDESK_SYNC_MAX_IMAGES" default:"15"`
	LockTTL         time.Duration `envconfig:"DEALERDESK_SYNC_LOCK_TTL" default:"30m"`
	UserAgent       string        `envconfig:"DEALERDESK_SYNC_USER_AGENT" default:"dealerdesk-sync/1.0"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"DEALERDESK_CRON_INTERVAL" default:"24h"`
	LockKey  string        `envconfig:"DEALERDESK_CRON_LOCK_KEY" default:"dd:cron:lock"`
	LockTTL  time.Duration `envconfig:"DEALERDESK_CRON_LOCK_TTL" default:"25h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
