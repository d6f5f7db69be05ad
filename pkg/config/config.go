package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	PubSub     PubSubConfig
	Outbox     OutboxConfig
	Commission CommissionConfig
	Payout     PayoutConfig
	Features   FeatureFlagsConfig
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
	Env          string `envconfig:"GROCERYRW_APP_ENV" required:"true"`
	Port         string `envconfig:"GROCERYRW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GROCERYRW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GROCERYRW_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"GROCERYRW_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GROCERYRW_DB_DSN"`
	Driver string `envconfig:"GROCERYRW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GROCERYRW_DB_HOST"`
	LegacyPort     int    `envconfig:"GROCERYRW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GROCERYRW_DB_USER"`
	LegacyPassword string `envconfig:"GROCERYRW_DB_PASSWORD"`
	LegacyName     string `envconfig:"GROCERYRW_DB_NAME"`
	LegacySSLMode  string `envconfig:"GROCERYRW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GROCERYRW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GROCERYRW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GROCERYRW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GROCERYRW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GROCERYRW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GROCERYRW_REDIS_ADDR"`
	Password     string        `envconfig:"GROCERYRW_REDIS_PASSWORD"`
	DB           int           `envconfig:"GROCERYRW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GROCERYRW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GROCERYRW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GROCERYRW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GROCERYRW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GROCERYRW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GROCERYRW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GROCERYRW_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GROCERYRW_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PubSubConfig struct {
	ProjectID           string `envconfig:"GROCERYRW_GCP_PROJECT_ID" required:"true"`
	RevenueTopic        string `envconfig:"GROCERYRW_PUBSUB_REVENUE_TOPIC" default:"grw-revenue-events"`
	RevenueSubscription string `envconfig:"GROCERYRW_PUBSUB_REVENUE_SUBSCRIPTION"`
	WalletTopic         string `envconfig:"GROCERYRW_PUBSUB_WALLET_TOPIC" default:"grw-wallet-events"`
	WalletSubscription  string `envconfig:"GROCERYRW_PUBSUB_WALLET_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"GROCERYRW_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"GROCERYRW_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"GROCERYRW_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CommissionConfig struct {
	DefaultPercentage int `envconfig:"GROCERYRW_COMMISSION_DEFAULT_PERCENTAGE" default:"20"`
}

type PayoutConfig struct {
	EstimatedProcessingTime string `envconfig:"GROCERYRW_PAYOUT_ESTIMATED_PROCESSING_TIME" default:"3-5 business days"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GROCERYRW_AUTO_MIGRATE" default:"false"`
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
