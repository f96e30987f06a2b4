package config

const (
	EnvPrefix = "ORGANIMART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv            = "ORGANIMART_APP_ENV"
	EnvPort              = "ORGANIMART_APP_PORT"
	EnvDBDSN             = "ORGANIMART_DB_DSN"
	EnvDBHost            = "ORGANIMART_DB_HOST"
	EnvDBUser            = "ORGANIMART_DB_USER"
	EnvDBName            = "ORGANIMART_DB_NAME"
	EnvRedisURL          = "ORGANIMART_REDIS_URL"
	EnvJWTSecret         = "ORGANIMART_JWT_SECRET"
	EnvJWTIssuer         = "ORGANIMART_JWT_ISSUER"
	EnvJWTExpMins        = "ORGANIMART_JWT_EXPIRATION_MINUTES"
	EnvGCPProjectID      = "ORGANIMART_GCP_PROJECT_ID"
	EnvPubSubDomainTopic = "ORGANIMART_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub   = "ORGANIMART_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
