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
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	Gate      GateConfig
	Views     ViewsConfig
	Messaging MessagingConfig
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
	Env          string `envconfig:"DEFACTO_APP_ENV" required:"true"`
	Port         string `envconfig:"DEFACTO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DEFACTO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DEFACTO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DEFACTO_DB_DSN"`
	Driver string `envconfig:"DEFACTO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DEFACTO_DB_HOST"`
	LegacyPort     int    `envconfig:"DEFACTO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DEFACTO_DB_USER"`
	LegacyPassword string `envconfig:"DEFACTO_DB_PASSWORD"`
	LegacyName     string `envconfig:"DEFACTO_DB_NAME"`
	LegacySSLMode  string `envconfig:"DEFACTO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DEFACTO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DEFACTO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DEFACTO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DEFACTO_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"DEFACTO_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DEFACTO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DEFACTO_REDIS_ADDR"`
	Password     string        `envconfig:"DEFACTO_REDIS_PASSWORD"`
	DB           int           `envconfig:"DEFACTO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DEFACTO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DEFACTO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DEFACTO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DEFACTO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DEFACTO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DEFACTO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DEFACTO_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"DEFACTO_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"DEFACTO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DEFACTO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DEFACTO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DEFACTO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DEFACTO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DEFACTO_ARGON_KEY_LEN" default:"32"`
}

// GateConfig tunes the payment gate state machine.
type GateConfig struct {
	// IntentTTL is how long a pending intent may sit before the expiry
	// job moves it to expired.
	IntentTTL       time.Duration `envconfig:"DEFACTO_GATE_INTENT_TTL" default:"12h"`
	ExpirySweep     time.Duration `envconfig:"DEFACTO_GATE_EXPIRY_SWEEP" default:"5m"`
	ExpiryBatchSize int           `envconfig:"DEFACTO_GATE_EXPIRY_BATCH_SIZE" default:"100"`
}

// ViewsConfig tunes the polled operational views.
type ViewsConfig struct {
	// PollInterval doubles as the snapshot cache TTL: a write on one
	// client is visible to every other client within one interval.
	PollInterval time.Duration `envconfig:"DEFACTO_VIEWS_POLL_INTERVAL" default:"3s"`
	AuditFeedLen int           `envconfig:"DEFACTO_VIEWS_AUDIT_FEED_LEN" default:"25"`
}

// MessagingConfig holds the outbound deep-link targets for order handoff.
type MessagingConfig struct {
	WhatsAppNumber string `envconfig:"DEFACTO_WHATSAPP_NUMBER"`
	TelegramHandle string `envconfig:"DEFACTO_TELEGRAM_HANDLE"`
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
