package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = "CATALOG"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "CATALOG_APP_ENV"
	EnvPort     = "CATALOG_APP_PORT"
	EnvLogLevel = "CATALOG_LOG_LEVEL"

	EnvDBDSN  = "CATALOG_DB_DSN"
	EnvDBHost = "CATALOG_DB_HOST"
	EnvDBUser = "CATALOG_DB_USER"
	EnvDBName = "CATALOG_DB_NAME"

	EnvRedisURL = "CATALOG_REDIS_URL"

	EnvJWTSecret  = "CATALOG_JWT_SECRET"
	EnvJWTIssuer  = "CATALOG_JWT_ISSUER"
	EnvJWTExpMins = "CATALOG_JWT_EXPIRATION_MINUTES"

	EnvMaxGeneratedCombinations = "CATALOG_MAX_GENERATED_COMBINATIONS"
	EnvSKUSuffixLength          = "CATALOG_SKU_SUFFIX_LENGTH"
	EnvSKUSuffixMaxLength       = "CATALOG_SKU_SUFFIX_MAX_LENGTH"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
