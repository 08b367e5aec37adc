package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/LerianStudio/lib-commons/commons"
	"github.com/keybox-dev/keybox-go/constant"
	"github.com/keybox-dev/keybox-go/model"
)

var (
	ErrProductNameRequired = errors.New("productName is required")
	ErrLicenseKeyRequired  = errors.New("license key is required")
)

// ClientConfig holds the resolved configuration of the SDK
type ClientConfig struct {
	ProductName string
	LicenseKey  string

	// HTTP configuration
	APIURL           string
	ValidateEndpoint string
	ActivateEndpoint string
	HTTPTimeout      time.Duration

	// Polling interval of the daemon
	Interval time.Duration
}

// NewDefaultConfig creates a config carrying every documented default
func NewDefaultConfig() ClientConfig {
	return ClientConfig{
		APIURL:           constant.DefaultAPIURL,
		ValidateEndpoint: constant.DefaultValidateEndpoint,
		ActivateEndpoint: constant.DefaultActivateEndpoint,
		HTTPTimeout:      constant.DefaultHTTPTimeoutSeconds * time.Second,
		Interval:         constant.DefaultIntervalSeconds * time.Second,
	}
}

// Validate checks the fields that have no default
func (c *ClientConfig) Validate() error {
	if strings.TrimSpace(c.ProductName) == "" {
		return ErrProductNameRequired
	}

	if strings.TrimSpace(c.LicenseKey) == "" {
		return ErrLicenseKeyRequired
	}

	return nil
}

// ValidateURL is the full URL polled by the daemon
func (c *ClientConfig) ValidateURL() string {
	return join(c.APIURL, c.ValidateEndpoint)
}

// ActivateURL is the full URL of the one-shot activation call
func (c *ClientConfig) ActivateURL() string {
	return join(c.APIURL, c.ActivateEndpoint)
}

func join(base, endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	return strings.TrimRight(base, "/") + endpoint
}

// FromModel converts a model.Config to a ClientConfig, filling defaults for
// anything left empty
func FromModel(cfg model.Config) (*ClientConfig, error) {
	config := NewDefaultConfig()

	config.ProductName = strings.TrimSpace(cfg.ProductName)
	config.LicenseKey = strings.TrimSpace(cfg.LicenseKey)

	if cfg.APIURL != "" {
		config.APIURL = cfg.APIURL
	}

	if cfg.Endpoint != "" {
		config.ValidateEndpoint = cfg.Endpoint
	}

	if cfg.IntervalSeconds > 0 {
		config.Interval = time.Duration(cfg.IntervalSeconds) * time.Second
	}

	if cfg.HTTPTimeoutSeconds > 0 {
		config.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ServerConfig is the configuration of the license server, read from the environment
type ServerConfig struct {
	Address     string `env:"SERVER_ADDRESS"`
	DatabaseURL string `env:"DATABASE_URL"`

	SweepIntervalSeconds int

	// CacheTTL of zero disables the lookup cache.
	CacheTTL    time.Duration
	AutoMigrate bool
}

// LoadServerConfig reads ServerConfig from the environment
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := commons.SetConfigFromEnvVars(cfg); err != nil {
		return nil, err
	}

	if cfg.Address == "" {
		cfg.Address = constant.DefaultServerAddress
	}

	sweep := commons.GetenvIntOrDefault("EXPIRY_SWEEP_INTERVAL_SECONDS", constant.DefaultSweepIntervalSeconds)
	if sweep <= 0 {
		sweep = constant.DefaultSweepIntervalSeconds
	}

	cfg.SweepIntervalSeconds = int(sweep)

	ttl := commons.GetenvIntOrDefault("LICENSE_CACHE_TTL_SECONDS", int64(constant.DefaultLicenseCacheTTL/time.Second))
	if ttl < 0 {
		ttl = 0
	}

	cfg.CacheTTL = time.Duration(ttl) * time.Second

	autoMigrate, err := strconv.ParseBool(commons.GetenvOrDefault("AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, errors.New("AUTO_MIGRATE must be a boolean")
	}

	cfg.AutoMigrate = autoMigrate

	return cfg, nil
}

// SweepInterval returns the sweep period as a duration
func (c *ServerConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
