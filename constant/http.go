package constant

// URLConstants defines the license server location and its routes
const (
	// DefaultAPIURL is the hosted license server
	DefaultAPIURL = "https://api-keybox.vercel.app"
	// DefaultValidateEndpoint is the route polled by the daemon
	DefaultValidateEndpoint = "/validate"
	// DefaultActivateEndpoint is the route used for one-shot activation
	DefaultActivateEndpoint = "/validate/activate"
)

// TimeConstants defines timeout and interval values
const (
	// DefaultHTTPTimeoutSeconds is the default HTTP client timeout in seconds
	DefaultHTTPTimeoutSeconds = 5
	// DefaultIntervalSeconds is the default daemon polling interval (24h).
	// Deployments that need faster feedback must set it explicitly.
	DefaultIntervalSeconds = 86400
	// DefaultSweepIntervalSeconds is how often the server rewrites expired licenses
	DefaultSweepIntervalSeconds = 60
)

// MaxResponseBodyBytes bounds how much of a response the client reads
const MaxResponseBodyBytes = 64 << 10

// DefaultServerAddress is where keyboxd listens when SERVER_ADDRESS is unset
const DefaultServerAddress = ":3000"
