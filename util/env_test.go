package util

import (
	"testing"

	"github.com/keybox-dev/keybox-go/model"
	"github.com/keybox-dev/keybox-go/test/helper"
	"github.com/stretchr/testify/assert"
)

func TestValidateEnvVariables(t *testing.T) {
	logger := helper.NewLogger()

	assert.Error(t, ValidateEnvVariables(nil, logger))

	err := ValidateEnvVariables(&model.Config{LicenseKey: "K"}, logger)
	assert.ErrorContains(t, err, "KEYBOX_PRODUCT_NAME")

	err = ValidateEnvVariables(&model.Config{ProductName: "Foo", LicenseKey: "  "}, logger)
	assert.ErrorContains(t, err, "KEYBOX_LICENSE_KEY")
	assert.True(t, logger.Contains("ERROR", "KEYBOX_LICENSE_KEY"))

	assert.NoError(t, ValidateEnvVariables(&model.Config{ProductName: "Foo", LicenseKey: "K"}, logger))
}
