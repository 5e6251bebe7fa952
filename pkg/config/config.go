package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is passed to envconfig; individual fields carry fully
// qualified names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names shared with tests and deploy tooling.
const (
	EnvAppEnv    = "ABIAGROW_APP_ENV"
	EnvPort      = "ABIAGROW_APP_PORT"
	EnvDBDSN     = "ABIAGROW_DB_DSN"
	EnvDBHost    = "ABIAGROW_DB_HOST"
	EnvDBUser    = "ABIAGROW_DB_USER"
	EnvDBName    = "ABIAGROW_DB_NAME"
	EnvRedisURL  = "ABIAGROW_REDIS_URL"
	EnvJWTSecret = "ABIAGROW_JWT_SECRET"
	EnvJWTIssuer = "ABIAGROW_JWT_ISSUER"
	EnvJWTExp    = "ABIAGROW_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	Mail          MailConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
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
	Env          string `envconfig:"ABIAGROW_APP_ENV" required:"true"`
	Port         string `envconfig:"ABIAGROW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ABIAGROW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ABIAGROW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ABIAGROW_DB_DSN"`
	Driver string `envconfig:"ABIAGROW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ABIAGROW_DB_HOST"`
	LegacyPort     int    `envconfig:"ABIAGROW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ABIAGROW_DB_USER"`
	LegacyPassword string `envconfig:"ABIAGROW_DB_PASSWORD"`
	LegacyName     string `envconfig:"ABIAGROW_DB_NAME"`
	LegacySSLMode  string `envconfig:"ABIAGROW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ABIAGROW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ABIAGROW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ABIAGROW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ABIAGROW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ABIAGROW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ABIAGROW_REDIS_ADDR"`
	Password     string        `envconfig:"ABIAGROW_REDIS_PASSWORD"`
	DB           int           `envconfig:"ABIAGROW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ABIAGROW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ABIAGROW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ABIAGROW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ABIAGROW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ABIAGROW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ABIAGROW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ABIAGROW_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ABIAGROW_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"ABIAGROW_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the Redis session lifetime configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ABIAGROW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ABIAGROW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ABIAGROW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ABIAGROW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ABIAGROW_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ABIAGROW_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ABIAGROW_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ABIAGROW_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ABIAGROW_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ABIAGROW_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ABIAGROW_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ABIAGROW_AUTO_MIGRATE" default:"false"`
}

// CheckoutConfig carries the order pricing knobs: a flat shipping fee per
// order and a tax rate applied to the item subtotal.
type CheckoutConfig struct {
	ShippingFlatCents int    `envconfig:"ABIAGROW_CHECKOUT_SHIPPING_FLAT_CENTS" default:"150000"`
	TaxRate           string `envconfig:"ABIAGROW_CHECKOUT_TAX_RATE" default:"0.075"`
}

type MailConfig struct {
	SendgridAPIKey string `envconfig:"ABIAGROW_SENDGRID_API_KEY"`
	DefaultFrom    string `envconfig:"ABIAGROW_MAIL_FROM" default:"no-reply@abiagrow.example"`
	SiteName       string `envconfig:"ABIAGROW_MAIL_SITE_NAME" default:"Abiagrow Connect"`
	BaseURL        string `envconfig:"ABIAGROW_MAIL_VERIFY_BASE_URL" default:"https://connect.abiagrow.example"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ABIAGROW_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"ABIAGROW_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"ABIAGROW_PUBSUB_ORDERS_TOPIC" default:"agc-order-events"`
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
