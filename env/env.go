package env

const (
	// DATABASE

	EnvDatabaseURL = "STOREFRONT_DATABASE_URL"

	// REDIS

	EnvRedisURL = "REDIS_URL"

	// IDENTITY PROVIDER

	EnvAuthAPIURL     = "AUTH_API_URL"
	EnvAuthServiceKey = "AUTH_SERVICE_KEY"
	EnvAuthJWKSURL    = "AUTH_JWKS_URL"

	// PAYMENT PROCESSOR

	EnvPaymentAPIURL    = "PAYMENT_API_URL"
	EnvPaymentSecretKey = "PAYMENT_SECRET_KEY"

	// BLOB STORAGE

	EnvBlobAPIURL     = "BLOB_API_URL"
	EnvBlobServiceKey = "BLOB_SERVICE_KEY"

	// EMAIL / SMTP

	EnvResendApiKey = "RESEND_API_KEY"

	EnvSMTPHost  = "SMTP_HOST"
	EnvSMTPPort  = "SMTP_PORT"
	EnvSMTPUser  = "SMTP_USER"
	EnvSMTPPass  = "SMTP_PASS"
	EnvEmailFrom = "FROM_ADDRESS"

	// STOREFRONT

	EnvConfigPath = "STOREFRONT_CONFIG_PATH"
	EnvSecret     = "STOREFRONT_SECRET"

	// ENVIRONMENT

	EnvGoEnvironment = "GO_ENV"
	EnvPort          = "PORT"
)
