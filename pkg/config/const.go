package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for fields without a tag.
const EnvPrefix = "AMOURA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Canonical environment variable names, shared with tests and deploy tooling.
const (
	EnvAppEnv   = "AMOURA_APP_ENV"
	EnvPort     = "AMOURA_APP_PORT"
	EnvLogLevel = "AMOURA_LOG_LEVEL"

	EnvDBDSN  = "AMOURA_DB_DSN"
	EnvDBHost = "AMOURA_DB_HOST"
	EnvDBUser = "AMOURA_DB_USER"
	EnvDBName = "AMOURA_DB_NAME"

	EnvRedisURL = "AMOURA_REDIS_URL"

	EnvJWTSecret              = "AMOURA_JWT_SECRET"
	EnvJWTIssuer              = "AMOURA_JWT_ISSUER"
	EnvJWTExpMins             = "AMOURA_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "AMOURA_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
