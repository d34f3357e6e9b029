package config

// EnvPrefix is the envconfig prefix shared by every setting.
const EnvPrefix = "PIZZARO"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv = "PIZZARO_APP_ENV"
	EnvDBDSN  = "PIZZARO_DB_DSN"
	EnvDBHost = "PIZZARO_DB_HOST"
	EnvDBUser = "PIZZARO_DB_USER"
	EnvDBName = "PIZZARO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
