package util

import (
	"errors"

	"github.com/LerianStudio/lib-commons/commons"
	"github.com/LerianStudio/lib-commons/commons/log"
	cn "github.com/keybox-dev/keybox-go/constant"
	"github.com/keybox-dev/keybox-go/model"
)

// ValidateEnvVariables checks the SDK variables that have no default.
func ValidateEnvVariables(cfg *model.Config, l log.Logger) error {
	if cfg == nil {
		return errors.New("license client config is nil")
	}

	if commons.IsNilOrEmpty(&cfg.ProductName) {
		err := "missing " + cn.EnvProductName + " environment variable"

		l.Error(err)

		return errors.New(err)
	}

	if commons.IsNilOrEmpty(&cfg.LicenseKey) {
		err := "missing " + cn.EnvLicenseKey + " environment variable"

		l.Error(err)

		return errors.New(err)
	}

	return nil
}
