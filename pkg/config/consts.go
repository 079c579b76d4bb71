package config

// EnvPrefix is the envconfig prefix shared by every variable.
const EnvPrefix = "SHOP"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "SHOP_APP_ENV"
	EnvDBDSN  = "SHOP_DB_DSN"
	EnvDBHost = "SHOP_DB_HOST"
	EnvDBUser = "SHOP_DB_USER"
	EnvDBName = "SHOP_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
