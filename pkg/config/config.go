package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Service   ServiceConfig
	DB        DBConfig
	Redis     RedisConfig
	Sweep     SweepConfig
	RetailCRM RetailCRMConfig
	Alfabank  AlfabankConfig
	Yookassa  YookassaConfig
	Podeli    PodeliConfig

	// Payselection runs two legal entities off the same API; each gets its
	// own credentials.
	Payselection    PayselectionConfig
	PayselectionRus PayselectionRusConfig
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
	Env          string `envconfig:"SHOP_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"SHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOP_LOG_WARN_STACK" default:"false"`
	HealthPort   string `envconfig:"SHOP_HEALTH_PORT" default:"8081"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SHOP_SERVICE_KIND" default:"sweep-worker"`
}

type DBConfig struct {
	DSN    string `envconfig:"SHOP_DB_DSN"`
	Driver string `envconfig:"SHOP_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SHOP_DB_HOST"`
	Port     int    `envconfig:"SHOP_DB_PORT" default:"5432"`
	User     string `envconfig:"SHOP_DB_USER"`
	Password string `envconfig:"SHOP_DB_PASSWORD"`
	Name     string `envconfig:"SHOP_DB_NAME"`
	SSLMode  string `envconfig:"SHOP_DB_SSLMODE" default:"disable"`

	AutoMigrate bool `envconfig:"SHOP_DB_AUTO_MIGRATE" default:"false"`

	MaxOpenConns    int           `envconfig:"SHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOP_REDIS_URL"`
	Address      string        `envconfig:"SHOP_REDIS_ADDR"`
	Password     string        `envconfig:"SHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SweepConfig paces the reconciliation sweeps. IterationDelay separates
// consecutive orders inside one sweep to respect provider rate limits.
type SweepConfig struct {
	Interval         time.Duration `envconfig:"SHOP_SWEEP_INTERVAL" default:"10m"`
	IterationDelay   time.Duration `envconfig:"SHOP_SWEEP_ITERATION_DELAY" default:"50ms"`
	PaymentWindow    time.Duration `envconfig:"SHOP_SWEEP_PAYMENT_WINDOW" default:"24h"`
	RequestTimeout   time.Duration `envconfig:"SHOP_SWEEP_REQUEST_TIMEOUT" default:"15s"`
	MaxRetryAttempts int           `envconfig:"SHOP_SWEEP_MAX_RETRY_ATTEMPTS" default:"3"`
}

type RetailCRMConfig struct {
	BaseURL  string `envconfig:"SHOP_RETAILCRM_URL"`
	APIKey   string `envconfig:"SHOP_RETAILCRM_API_KEY"`
	SiteCode string `envconfig:"SHOP_RETAILCRM_SITE_CODE"`
}

type AlfabankConfig struct {
	BaseURL  string `envconfig:"SHOP_ALFABANK_URL" default:"https://payment.alfabank.ru/payment/rest"`
	Username string `envconfig:"SHOP_ALFABANK_USERNAME"`
	Password string `envconfig:"SHOP_ALFABANK_PASSWORD"`
}

type YookassaConfig struct {
	BaseURL   string `envconfig:"SHOP_YOOKASSA_URL" default:"https://api.yookassa.ru/v3"`
	ShopID    string `envconfig:"SHOP_YOOKASSA_SHOP_ID"`
	SecretKey string `envconfig:"SHOP_YOOKASSA_SECRET_KEY"`
}

type PodeliConfig struct {
	BaseURL  string `envconfig:"SHOP_PODELI_URL" default:"https://api.podeli.ru"`
	APIKey   string `envconfig:"SHOP_PODELI_API_KEY"`
	ShopCode string `envconfig:"SHOP_PODELI_SHOP_CODE"`
}

type PayselectionConfig struct {
	BaseURL   string `envconfig:"SHOP_PAYSELECTION_URL" default:"https://gw.payselection.com"`
	SiteID    string `envconfig:"SHOP_PAYSELECTION_SITE_ID"`
	SecretKey string `envconfig:"SHOP_PAYSELECTION_SECRET_KEY"`
}

type PayselectionRusConfig struct {
	BaseURL   string `envconfig:"SHOP_PAYSELECTION_RUS_URL" default:"https://gw.payselection.com"`
	SiteID    string `envconfig:"SHOP_PAYSELECTION_RUS_SITE_ID"`
	SecretKey string `envconfig:"SHOP_PAYSELECTION_RUS_SECRET_KEY"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	fallbackValues := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if fallbackValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
