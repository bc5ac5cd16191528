package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "defacto"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "DEFACTO_APP_ENV"
	EnvPort       = "DEFACTO_APP_PORT"
	EnvDBDSN      = "DEFACTO_DB_DSN"
	EnvDBHost     = "DEFACTO_DB_HOST"
	EnvDBUser     = "DEFACTO_DB_USER"
	EnvDBName     = "DEFACTO_DB_NAME"
	EnvRedisURL   = "DEFACTO_REDIS_URL"
	EnvJWTSecret  = "DEFACTO_JWT_SECRET"
	EnvJWTIssuer  = "DEFACTO_JWT_ISSUER"
	EnvJWTExpMins = "DEFACTO_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
