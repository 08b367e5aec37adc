package config

import (
	"testing"
	"time"

	"github.com/keybox-dev/keybox-go/constant"
	"github.com/keybox-dev/keybox-go/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromModelDefaults(t *testing.T) {
	cfg, err := FromModel(model.Config{ProductName: " Foo ", LicenseKey: "FOO-1"})
	require.NoError(t, err)

	assert.Equal(t, "Foo", cfg.ProductName)
	assert.Equal(t, 24*time.Hour, cfg.Interval)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, constant.DefaultAPIURL+"/validate", cfg.ValidateURL())
	assert.Equal(t, constant.DefaultAPIURL+"/validate/activate", cfg.ActivateURL())
}

func TestFromModelOverrides(t *testing.T) {
	cfg, err := FromModel(model.Config{
		ProductName:        "Foo",
		LicenseKey:         "FOO-1",
		APIURL:             "http://localhost:3000/",
		Endpoint:           "check",
		IntervalSeconds:    5,
		HTTPTimeoutSeconds: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/check", cfg.ValidateURL())
	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.Equal(t, time.Second, cfg.HTTPTimeout)
}

func TestFromModelRequiresProductAndKey(t *testing.T) {
	_, err := FromModel(model.Config{LicenseKey: "K"})
	assert.ErrorIs(t, err, ErrProductNameRequired)

	_, err = FromModel(model.Config{ProductName: "Foo", LicenseKey: "  "})
	assert.ErrorIs(t, err, ErrLicenseKeyRequired)
}

func TestLoadServerConfig(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("EXPIRY_SWEEP_INTERVAL_SECONDS", "")
	t.Setenv("LICENSE_CACHE_TTL_SECONDS", "")
	t.Setenv("AUTO_MIGRATE", "")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Address)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, time.Minute, cfg.SweepInterval())
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.AutoMigrate)

	t.Setenv("SERVER_ADDRESS", ":8080")
	t.Setenv("DATABASE_URL", "postgres://localhost/keybox")
	t.Setenv("EXPIRY_SWEEP_INTERVAL_SECONDS", "5")
	t.Setenv("LICENSE_CACHE_TTL_SECONDS", "0")
	t.Setenv("AUTO_MIGRATE", "false")

	cfg, err = LoadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "postgres://localhost/keybox", cfg.DatabaseURL)
	assert.Equal(t, 5*time.Second, cfg.SweepInterval())
	assert.Zero(t, cfg.CacheTTL)
	assert.False(t, cfg.AutoMigrate)

	t.Setenv("AUTO_MIGRATE", "maybe")

	_, err = LoadServerConfig()
	assert.Error(t, err)
}
