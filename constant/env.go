package constant

// SDK environment variable names
const (
	EnvProductName     = "KEYBOX_PRODUCT_NAME"
	EnvLicenseKey      = "KEYBOX_LICENSE_KEY"
	EnvAPIURL          = "KEYBOX_API_URL"
	EnvEndpoint        = "KEYBOX_ENDPOINT"
	EnvIntervalSeconds = "KEYBOX_INTERVAL_SECONDS"
)
