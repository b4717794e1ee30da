package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "LOSTFOUND"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv     = "LOSTFOUND_APP_ENV"
	EnvPort       = "LOSTFOUND_APP_PORT"
	EnvLogLevel   = "LOSTFOUND_LOG_LEVEL"
	EnvDBDSN      = "LOSTFOUND_DB_DSN"
	EnvDBDriver   = "LOSTFOUND_DB_DRIVER"
	EnvDBHost     = "LOSTFOUND_DB_HOST"
	EnvDBUser     = "LOSTFOUND_DB_USER"
	EnvDBName     = "LOSTFOUND_DB_NAME"
	EnvRedisURL   = "LOSTFOUND_REDIS_URL"
	EnvJWTSecret  = "LOSTFOUND_JWT_SECRET"
	EnvJWTIssuer  = "LOSTFOUND_JWT_ISSUER"
	EnvJWTExpMins = "LOSTFOUND_JWT_EXPIRATION_MINUTES"
	EnvSMTPHost   = "LOSTFOUND_SMTP_HOST"
	EnvSMTPUser   = "LOSTFOUND_SMTP_USER"
	EnvSMTPPass   = "LOSTFOUND_SMTP_PASSWORD"
	EnvCORSOrigin = "LOSTFOUND_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	SMTP         SMTPConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"LOSTFOUND_APP_ENV" required:"true"`
	Port         string `envconfig:"LOSTFOUND_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"LOSTFOUND_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOSTFOUND_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LOSTFOUND_DB_DSN"`
	Driver string `envconfig:"LOSTFOUND_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOSTFOUND_DB_HOST"`
	LegacyPort     int    `envconfig:"LOSTFOUND_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOSTFOUND_DB_USER"`
	LegacyPassword string `envconfig:"LOSTFOUND_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOSTFOUND_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOSTFOUND_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOSTFOUND_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOSTFOUND_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOSTFOUND_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOSTFOUND_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

// RedisConfig is optional; an empty URL and address disables idempotency.
type RedisConfig struct {
	URL          string        `envconfig:"LOSTFOUND_REDIS_URL"`
	Address      string        `envconfig:"LOSTFOUND_REDIS_ADDR"`
	Password     string        `envconfig:"LOSTFOUND_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOSTFOUND_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOSTFOUND_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOSTFOUND_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOSTFOUND_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOSTFOUND_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOSTFOUND_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"LOSTFOUND_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LOSTFOUND_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LOSTFOUND_JWT_EXPIRATION_MINUTES" default:"480"`
}

// SMTPConfig drives outbound claim emails. Without credentials the mailer
// falls back to logging messages.
type SMTPConfig struct {
	Host      string        `envconfig:"LOSTFOUND_SMTP_HOST"`
	Port      int           `envconfig:"LOSTFOUND_SMTP_PORT" default:"587"`
	User      string        `envconfig:"LOSTFOUND_SMTP_USER"`
	Password  string        `envconfig:"LOSTFOUND_SMTP_PASSWORD"`
	FromEmail string        `envconfig:"LOSTFOUND_FROM_EMAIL" default:"noreply@uwaterloo.ca"`
	FromName  string        `envconfig:"LOSTFOUND_FROM_NAME" default:"UW Lost & Found"`
	Timeout   time.Duration `envconfig:"LOSTFOUND_SMTP_TIMEOUT" default:"10s"`
}

func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.User != "" && s.Password != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"LOSTFOUND_CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173,http://127.0.0.1:3000"`
}

// RateLimitConfig caps claim submissions per user. It only applies when
// redis is configured; a zero limit disables it.
type RateLimitConfig struct {
	ClaimSubmitLimit  int           `envconfig:"LOSTFOUND_CLAIM_SUBMIT_LIMIT" default:"10"`
	ClaimSubmitWindow time.Duration `envconfig:"LOSTFOUND_CLAIM_SUBMIT_WINDOW" default:"10m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LOSTFOUND_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
