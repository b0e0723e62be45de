package config

const EnvPrefix = "FLEETQUOTE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "FLEETQUOTE_APP_ENV"
	EnvPort     = "FLEETQUOTE_APP_PORT"
	EnvDBDSN    = "FLEETQUOTE_DB_DSN"
	EnvDBHost   = "FLEETQUOTE_DB_HOST"
	EnvDBUser   = "FLEETQUOTE_DB_USER"
	EnvDBName   = "FLEETQUOTE_DB_NAME"
	EnvRedisURL = "FLEETQUOTE_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
