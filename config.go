// Package keybox loads SDK configuration from the environment.
package keybox

import (
	"github.com/LerianStudio/lib-commons/commons"
	cn "github.com/keybox-dev/keybox-go/constant"
	"github.com/keybox-dev/keybox-go/model"
)

// LoadFromEnv builds a model.Config from the KEYBOX_* variables. Unset values
// keep their documented defaults; required ones are checked by the consumer.
func LoadFromEnv() model.Config {
	return model.Config{
		ProductName:     commons.GetenvOrDefault(cn.EnvProductName, ""),
		LicenseKey:      commons.GetenvOrDefault(cn.EnvLicenseKey, ""),
		APIURL:          commons.GetenvOrDefault(cn.EnvAPIURL, cn.DefaultAPIURL),
		Endpoint:        commons.GetenvOrDefault(cn.EnvEndpoint, cn.DefaultValidateEndpoint),
		IntervalSeconds: int(commons.GetenvIntOrDefault(cn.EnvIntervalSeconds, cn.DefaultIntervalSeconds)),
	}
}
