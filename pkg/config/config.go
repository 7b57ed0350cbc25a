package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Bootstrap     BootstrapConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PROMO_APP_ENV" required:"true"`
	Port         string `envconfig:"PROMO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PROMO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PROMO_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"PROMO_LOG_FORMAT"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PROMO_DB_DSN"`
	Driver string `envconfig:"PROMO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PROMO_DB_HOST"`
	LegacyPort     int    `envconfig:"PROMO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PROMO_DB_USER"`
	LegacyPassword string `envconfig:"PROMO_DB_PASSWORD"`
	LegacyName     string `envconfig:"PROMO_DB_NAME"`
	LegacySSLMode  string `envconfig:"PROMO_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"PROMO_SQLITE_PATH" default:"promotion_manager.db"`

	MaxOpenConns    int           `envconfig:"PROMO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PROMO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PROMO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PROMO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PROMO_REDIS_URL"`
	Address      string        `envconfig:"PROMO_REDIS_ADDR"`
	Password     string        `envconfig:"PROMO_REDIS_PASSWORD"`
	DB           int           `envconfig:"PROMO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PROMO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PROMO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PROMO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PROMO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PROMO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PROMO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PROMO_JWT_ISSUER" default:"promotion-manager"`
	ExpirationMinutes      int    `envconfig:"PROMO_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"PROMO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PROMO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PROMO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PROMO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PROMO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PROMO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"PROMO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit    int           `envconfig:"PROMO_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"PROMO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow        time.Duration `envconfig:"PROMO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUsernameLimit int           `envconfig:"PROMO_AUTH_RATE_LIMIT_REGISTER_USERNAME_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"PROMO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PROMO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PROMO_AUTO_MIGRATE" default:"false"`
}

// BootstrapConfig seeds the first super administrator when both credentials are set.
type BootstrapConfig struct {
	Username string `envconfig:"PROMO_BOOTSTRAP_USERNAME"`
	Password string `envconfig:"PROMO_BOOTSTRAP_PASSWORD"`
	Email    string `envconfig:"PROMO_BOOTSTRAP_EMAIL"`
}

// Enabled reports whether a bootstrap account was configured.
func (b BootstrapConfig) Enabled() bool {
	return strings.TrimSpace(b.Username) != "" && b.Password != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PROMO_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
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
