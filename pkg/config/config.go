package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Defaults     DefaultsConfig
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
	Env          string `envconfig:"FLEETQUOTE_APP_ENV" required:"true"`
	Port         string `envconfig:"FLEETQUOTE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FLEETQUOTE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FLEETQUOTE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FLEETQUOTE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FLEETQUOTE_DB_DSN"`
	Driver string `envconfig:"FLEETQUOTE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FLEETQUOTE_DB_HOST"`
	LegacyPort     int    `envconfig:"FLEETQUOTE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FLEETQUOTE_DB_USER"`
	LegacyPassword string `envconfig:"FLEETQUOTE_DB_PASSWORD"`
	LegacyName     string `envconfig:"FLEETQUOTE_DB_NAME"`
	LegacySSLMode  string `envconfig:"FLEETQUOTE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FLEETQUOTE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FLEETQUOTE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FLEETQUOTE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FLEETQUOTE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FLEETQUOTE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FLEETQUOTE_REDIS_ADDR"`
	Password     string        `envconfig:"FLEETQUOTE_REDIS_PASSWORD"`
	DB           int           `envconfig:"FLEETQUOTE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FLEETQUOTE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FLEETQUOTE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FLEETQUOTE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FLEETQUOTE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FLEETQUOTE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FLEETQUOTE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FLEETQUOTE_AUTO_MIGRATE" default:"false"`
}

// DefaultsConfig carries the system-level fallbacks used when neither a
// vehicle line nor the quote header sets a value.
type DefaultsConfig struct {
	VATPercent           decimal.Decimal `envconfig:"FLEETQUOTE_DEFAULT_VAT_PERCENT" default:"5"`
	InsuranceMonthly     decimal.Decimal `envconfig:"FLEETQUOTE_DEFAULT_INSURANCE_MONTHLY" default:"0"`
	MaintenanceMonthly   decimal.Decimal `envconfig:"FLEETQUOTE_DEFAULT_MAINTENANCE_MONTHLY" default:"0"`
	DeliveryFee          decimal.Decimal `envconfig:"FLEETQUOTE_DEFAULT_DELIVERY_FEE" default:"0"`
	CollectionFee        decimal.Decimal `envconfig:"FLEETQUOTE_DEFAULT_COLLECTION_FEE" default:"0"`
	MileageKMPerMonth    int             `envconfig:"FLEETQUOTE_DEFAULT_MILEAGE_KM_PER_MONTH" default:"3000"`
	PaymentTermsDays     int             `envconfig:"FLEETQUOTE_DEFAULT_PAYMENT_TERMS_DAYS" default:"30"`
	FinancingRatePercent decimal.Decimal `envconfig:"FLEETQUOTE_DEFAULT_FINANCING_RATE_PERCENT" default:"6"`
	OverheadPercent      decimal.Decimal `envconfig:"FLEETQUOTE_DEFAULT_OVERHEAD_PERCENT" default:"10"`
	TargetMarginPercent  decimal.Decimal `envconfig:"FLEETQUOTE_DEFAULT_TARGET_MARGIN_PERCENT" default:"15"`
	ResidualValuePercent decimal.Decimal `envconfig:"FLEETQUOTE_DEFAULT_RESIDUAL_VALUE_PERCENT" default:"0"`
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
