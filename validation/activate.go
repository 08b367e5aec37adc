package validation

import (
	"context"

	"github.com/LerianStudio/lib-commons/commons/zap"
	"github.com/keybox-dev/keybox-go/internal/api"
	"github.com/keybox-dev/keybox-go/internal/config"
	"github.com/keybox-dev/keybox-go/model"
)

// Activate performs the one-time activation of cfg's license. Only
// opts.Logger and opts.HTTPClient are used.
func Activate(ctx context.Context, cfg model.Config, opts Options) (model.ActivationResult, error) {
	l := opts.Logger
	if l == nil {
		l = zap.InitializeLogger()
	}

	clientCfg, err := config.FromModel(cfg)
	if err != nil {
		l.Errorf("Invalid license configuration: %s", err.Error())
		return model.ActivationResult{}, err
	}

	l.Infof("Activating license for product %s", clientCfg.ProductName)

	res, err := api.New(clientCfg, opts.HTTPClient, l).Activate(ctx)
	if err != nil {
		l.Errorf("License activation failed: %v", err)
		return res, err
	}

	l.Infof("License activated - status: %s", res.Status)

	return res, nil
}
