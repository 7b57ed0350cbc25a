package config

// EnvPrefix is handed to envconfig; every tag already carries the full variable name.
const EnvPrefix = "PROMO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv                 = "PROMO_APP_ENV"
	EnvPort                   = "PROMO_APP_PORT"
	EnvDBDSN                  = "PROMO_DB_DSN"
	EnvDBHost                 = "PROMO_DB_HOST"
	EnvDBUser                 = "PROMO_DB_USER"
	EnvDBName                 = "PROMO_DB_NAME"
	EnvUseSQLite              = "PROMO_USE_SQLITE"
	EnvRedisURL               = "PROMO_REDIS_URL"
	EnvJWTSecret              = "PROMO_JWT_SECRET"
	EnvJWTIssuer              = "PROMO_JWT_ISSUER"
	EnvJWTExpMins             = "PROMO_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "PROMO_REFRESH_TOKEN_TTL_MINUTES"
	EnvBootstrapUsername      = "PROMO_BOOTSTRAP_USERNAME"
	EnvBootstrapPassword      = "PROMO_BOOTSTRAP_PASSWORD"
	EnvCORSAllowedOrigins     = "PROMO_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
