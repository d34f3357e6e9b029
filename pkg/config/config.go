package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	OTP          OTPConfig
	OTPRateLimit OTPRateLimitConfig
	Cart         CartConfig
	Mail         MailConfig
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
	Env          string `envconfig:"PIZZARO_APP_ENV" required:"true"`
	Port         string `envconfig:"PIZZARO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PIZZARO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PIZZARO_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"PIZZARO_AUTO_MIGRATE" default:"false"`
	CORSOrigins  string `envconfig:"PIZZARO_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PIZZARO_DB_DSN"`
	Driver string `envconfig:"PIZZARO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PIZZARO_DB_HOST"`
	LegacyPort     int    `envconfig:"PIZZARO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PIZZARO_DB_USER"`
	LegacyPassword string `envconfig:"PIZZARO_DB_PASSWORD"`
	LegacyName     string `envconfig:"PIZZARO_DB_NAME"`
	LegacySSLMode  string `envconfig:"PIZZARO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PIZZARO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PIZZARO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PIZZARO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PIZZARO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PIZZARO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PIZZARO_REDIS_ADDR"`
	Password     string        `envconfig:"PIZZARO_REDIS_PASSWORD"`
	DB           int           `envconfig:"PIZZARO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PIZZARO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PIZZARO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PIZZARO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PIZZARO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PIZZARO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PIZZARO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PIZZARO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PIZZARO_JWT_EXPIRATION_MINUTES" default:"43200"`
	AdminExpiration   int    `envconfig:"PIZZARO_JWT_ADMIN_EXPIRATION_MINUTES" default:"30"`
}

// AccessTokenTTL returns the customer access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// AdminTokenTTL returns the admin access token lifetime.
func (j JWTConfig) AdminTokenTTL() time.Duration {
	if j.AdminExpiration <= 0 {
		return 0
	}
	return time.Duration(j.AdminExpiration) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PIZZARO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PIZZARO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PIZZARO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PIZZARO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PIZZARO_ARGON_KEY_LEN" default:"32"`
}

type OTPConfig struct {
	TTL        time.Duration `envconfig:"PIZZARO_OTP_TTL" default:"5m"`
	CodeLength int           `envconfig:"PIZZARO_OTP_CODE_LENGTH" default:"6"`
}

type OTPRateLimitConfig struct {
	Window     time.Duration `envconfig:"PIZZARO_OTP_RATE_LIMIT_WINDOW" default:"1m"`
	EmailLimit int           `envconfig:"PIZZARO_OTP_RATE_LIMIT_EMAIL_LIMIT" default:"3"`
	IPLimit    int           `envconfig:"PIZZARO_OTP_RATE_LIMIT_IP_LIMIT" default:"10"`
}

type CartConfig struct {
	SaveDebounce time.Duration `envconfig:"PIZZARO_CART_SAVE_DEBOUNCE" default:"200ms"`
}

type MailConfig struct {
	APIKey      string `envconfig:"PIZZARO_MAIL_API_KEY"`
	BaseURL     string `envconfig:"PIZZARO_MAIL_BASE_URL" default:"https://api.sendgrid.com"`
	DefaultFrom string `envconfig:"PIZZARO_MAIL_FROM_EMAIL"`
	FromName    string `envconfig:"PIZZARO_MAIL_FROM_NAME" default:"Pizzaro"`
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
