package config

const EnvPrefix = "GROCERYRW"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Env var names referenced outside struct tags (tests, error messages).
const (
	EnvAppEnv       = "GROCERYRW_APP_ENV"
	EnvPort         = "GROCERYRW_APP_PORT"
	EnvDBDSN        = "GROCERYRW_DB_DSN"
	EnvDBHost       = "GROCERYRW_DB_HOST"
	EnvDBUser       = "GROCERYRW_DB_USER"
	EnvDBName       = "GROCERYRW_DB_NAME"
	EnvRedisURL     = "GROCERYRW_REDIS_URL"
	EnvJWTSecret    = "GROCERYRW_JWT_SECRET"
	EnvJWTIssuer    = "GROCERYRW_JWT_ISSUER"
	EnvJWTExpMins   = "GROCERYRW_JWT_EXPIRATION_MINUTES"
	EnvGCPProjectID = "GROCERYRW_GCP_PROJECT_ID"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
