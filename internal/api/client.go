package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/LerianStudio/lib-commons/commons/log"
	cn "github.com/keybox-dev/keybox-go/constant"
	libErr "github.com/keybox-dev/keybox-go/error"
	"github.com/keybox-dev/keybox-go/internal/config"
	"github.com/keybox-dev/keybox-go/model"
)

// ErrNotJSON is wrapped when the license server answers with another content type
var ErrNotJSON = errors.New("license server did not return JSON")

// Client handles communication with the license API
type Client struct {
	httpClient *http.Client
	config     *config.ClientConfig
	logger     log.Logger
}

// New creates a new API client
func New(cfg *config.ClientConfig, httpClient *http.Client, logger log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.HTTPTimeout,
		}
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		logger:     logger,
	}
}

// ValidateLicense posts {productName, key} to the validation endpoint.
//
// A JSON body is decoded whatever the status code; a non-2xx answer is never
// reported as valid. Transport and decoding failures come back as
// *libErr.TransientError, non-JSON error answers as *libErr.ApiError.
func (c *Client) ValidateLicense(ctx context.Context) (model.ValidationResult, error) {
	var result model.ValidationResult

	status, err := c.post(ctx, c.config.ValidateURL(), model.ValidationRequest{
		ProductName: c.config.ProductName,
		Key:         c.config.LicenseKey,
	}, &result)
	if err != nil {
		return model.ValidationResult{}, err
	}

	if status < 200 || status >= 300 {
		c.logger.Debugf("License server answered %d - status: %s, message: %s", status, result.Status, result.Message)

		result.Valid = false
		if result.Status == "" {
			result.Status = cn.ResponseStatusError
		}
	}

	return result, nil
}

// Activate posts {key, productName} to the activation endpoint. Anything but a
// 2xx JSON answer with success=true is an error.
func (c *Client) Activate(ctx context.Context) (model.ActivationResult, error) {
	var result model.ActivationResult

	status, err := c.post(ctx, c.config.ActivateURL(), model.KeyRequest{
		Key:         c.config.LicenseKey,
		ProductName: c.config.ProductName,
	}, &result)
	if err != nil {
		return model.ActivationResult{}, err
	}

	if status < 200 || status >= 300 || !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "license activation failed"
		}

		return result, &libErr.ApiError{StatusCode: status, Msg: msg}
	}

	return result, nil
}

// post sends body as JSON and decodes a JSON answer into out, returning the status code.
func (c *Client) post(ctx context.Context, url string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnf("License request to %s failed - error: %s", url, err.Error())
		return 0, &libErr.TransientError{Op: "license request", Err: err}
	}
	defer resp.Body.Close()

	if !isJSON(resp.Header.Get("Content-Type")) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, cn.MaxResponseBodyBytes))

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return resp.StatusCode, &libErr.ApiError{
				StatusCode: resp.StatusCode,
				Msg:        fmt.Sprintf("%s (status %d)", ErrNotJSON.Error(), resp.StatusCode),
			}
		}

		return resp.StatusCode, &libErr.TransientError{Op: "decode response", Err: ErrNotJSON}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, cn.MaxResponseBodyBytes)).Decode(out); err != nil {
		return resp.StatusCode, &libErr.TransientError{Op: "decode response", Err: err}
	}

	return resp.StatusCode, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == "application/json"
}
