// Package service answers validation, activation, revocation and creation
// requests on top of the lifecycle rules and a license store. It is stateless
// per call; all authority lives in the store.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/LerianStudio/lib-commons/commons/log"
	"github.com/google/uuid"
	"github.com/keybox-dev/keybox-go/constant"
	"github.com/keybox-dev/keybox-go/internal/lifecycle"
	"github.com/keybox-dev/keybox-go/internal/metrics"
	"github.com/keybox-dev/keybox-go/internal/store"
	"github.com/keybox-dev/keybox-go/model"
	"github.com/keybox-dev/keybox-go/pkg"
)

// KeyGenerator produces candidate license keys.
type KeyGenerator interface {
	Generate(productName string) (string, error)
}

// Dependencies wires a Service.
type Dependencies struct {
	Repository store.Repository
	Keys       KeyGenerator
	Metrics    *metrics.Metrics
	Logger     log.Logger
	// Now defaults to time.Now in UTC.
	Now func() time.Time
}

// layered is implemented by store decorators whose reads may lag the store.
type layered interface {
	Primary() store.Repository
}

type Service struct {
	repo store.Repository
	// primary serves the reads that decide a transition; it skips any cache.
	primary store.Repository
	keys    KeyGenerator
	metrics *metrics.Metrics
	logger  log.Logger
	nowFn   func() time.Time
}

func New(deps Dependencies) *Service {
	s := &Service{
		repo:    deps.Repository,
		primary: deps.Repository,
		keys:    deps.Keys,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		nowFn:   deps.Now,
	}

	if l, ok := deps.Repository.(layered); ok {
		s.primary = l.Primary()
	}

	if s.nowFn == nil {
		s.nowFn = func() time.Time { return time.Now().UTC() }
	}

	return s
}

// Validate answers a validation request. A missing key is the only input
// error; an unknown key is a normal result with status "invalid".
func (s *Service) Validate(ctx context.Context, req model.ValidationRequest) (model.ValidationResult, error) {
	if pkg.IsBlank(req.Key) {
		return model.ValidationResult{}, pkg.ValidateBusinessError(constant.ErrMissingLicenseKey, constant.EntityLicense)
	}

	l, err := s.repo.FindByKey(ctx, req.Key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Errorf("Failed to load license for validation: %v", err)
		return model.ValidationResult{}, pkg.ValidateInternalError(err, constant.EntityLicense)
	}

	res := lifecycle.Evaluate(l, s.nowFn())
	s.metrics.Validation(res.Status)

	s.logger.Debugf("Validated license for product %q: status=%s", req.ProductName, res.Status)

	return res, nil
}

// Activate moves a PENDING license to ACTIVE. Activating an ACTIVE license
// succeeds without changes.
func (s *Service) Activate(ctx context.Context, req model.KeyRequest) (model.ActivationResult, error) {
	if pkg.IsBlank(req.Key) {
		return model.ActivationResult{}, pkg.ValidateBusinessError(constant.ErrMissingLicenseKey, constant.EntityLicense)
	}

	for attempt := 0; attempt < constant.TransitionAttempts; attempt++ {
		l, err := s.find(ctx, req.Key)
		if err != nil {
			s.metrics.Transition(metrics.OpActivate, metrics.ResultError)
			return model.ActivationResult{}, err
		}

		next, changed, err := lifecycle.Activate(l, s.nowFn())
		if err != nil {
			s.logger.Warnf("Activation of %s rejected: stored status %s", l.Key, l.Status)
			s.metrics.Transition(metrics.OpActivate, metrics.ResultRejected)

			return model.ActivationResult{}, pkg.ValidateBusinessError(err, constant.EntityLicense, l.Key)
		}

		if !changed {
			s.metrics.Transition(metrics.OpActivate, metrics.ResultOK)
			return activationResult(&next, constant.MessageAlreadyActive), nil
		}

		ok, err := s.repo.CompareAndSwap(ctx, l.Status, &next)
		if err != nil {
			s.logger.Errorf("Failed to activate license %s: %v", l.Key, err)
			s.metrics.Transition(metrics.OpActivate, metrics.ResultError)

			return model.ActivationResult{}, pkg.ValidateInternalError(err, constant.EntityLicense)
		}

		if ok {
			s.logger.Infof("License %s activated, expires at %s", next.Key, next.ExpiresAt.Format(time.RFC3339))
			s.metrics.Transition(metrics.OpActivate, metrics.ResultOK)

			return activationResult(&next, constant.MessageActivated), nil
		}

		s.logger.Debugf("Activation of %s lost a concurrent update, retrying", l.Key)
	}

	s.metrics.Transition(metrics.OpActivate, metrics.ResultError)

	return model.ActivationResult{}, pkg.ValidateInternalError(errors.New("license kept changing during activation"), constant.EntityLicense)
}

// Revoke moves a PENDING or ACTIVE license to REVOKED.
func (s *Service) Revoke(ctx context.Context, req model.KeyRequest) (model.RevocationResult, error) {
	if pkg.IsBlank(req.Key) {
		return model.RevocationResult{}, pkg.ValidateBusinessError(constant.ErrMissingLicenseKey, constant.EntityLicense)
	}

	for attempt := 0; attempt < constant.TransitionAttempts; attempt++ {
		l, err := s.find(ctx, req.Key)
		if err != nil {
			s.metrics.Transition(metrics.OpRevoke, metrics.ResultError)
			return model.RevocationResult{}, err
		}

		next, err := lifecycle.Revoke(l, s.nowFn())
		if err != nil {
			s.logger.Warnf("Revocation of %s rejected: stored status %s", l.Key, l.Status)
			s.metrics.Transition(metrics.OpRevoke, metrics.ResultRejected)

			return model.RevocationResult{}, pkg.ValidateBusinessError(err, constant.EntityLicense, l.Key)
		}

		ok, err := s.repo.CompareAndSwap(ctx, l.Status, &next)
		if err != nil {
			s.logger.Errorf("Failed to revoke license %s: %v", l.Key, err)
			s.metrics.Transition(metrics.OpRevoke, metrics.ResultError)

			return model.RevocationResult{}, pkg.ValidateInternalError(err, constant.EntityLicense)
		}

		if ok {
			s.logger.Infof("License %s revoked", next.Key)
			s.metrics.Transition(metrics.OpRevoke, metrics.ResultOK)

			return model.RevocationResult{
				Message: constant.MessageRevokedSuccess,
				Key:     next.Key,
				Status:  next.Status,
			}, nil
		}

		s.logger.Debugf("Revocation of %s lost a concurrent update, retrying", l.Key)
	}

	s.metrics.Transition(metrics.OpRevoke, metrics.ResultError)

	return model.RevocationResult{}, pkg.ValidateInternalError(errors.New("license kept changing during revocation"), constant.EntityLicense)
}

// Create issues a new PENDING license, retrying key generation on collision.
func (s *Service) Create(ctx context.Context, in model.CreateLicenseInput) (model.CreationResult, error) {
	if err := lifecycle.CheckCreate(in); err != nil {
		s.metrics.Transition(metrics.OpCreate, metrics.ResultRejected)
		return model.CreationResult{}, pkg.ValidateBusinessError(err, constant.EntityLicense)
	}

	for attempt := 0; attempt < constant.KeyGenerationAttempts; attempt++ {
		key, err := s.keys.Generate(in.ProductName)
		if err != nil {
			s.logger.Errorf("Failed to generate license key: %v", err)
			break
		}

		l, err := lifecycle.New(in, key, s.nowFn())
		if err != nil {
			return model.CreationResult{}, pkg.ValidateBusinessError(err, constant.EntityLicense)
		}

		l.ID = uuid.New()

		err = s.repo.Create(ctx, l)
		if errors.Is(err, store.ErrDuplicateKey) {
			s.logger.Warnf("Generated key collided (attempt %d of %d)", attempt+1, constant.KeyGenerationAttempts)
			continue
		}

		if err != nil {
			s.logger.Errorf("Failed to store license: %v", err)
			s.metrics.Transition(metrics.OpCreate, metrics.ResultError)

			return model.CreationResult{}, pkg.ValidateInternalError(err, constant.EntityLicense)
		}

		s.logger.Infof("License %s created for %q, expires at %s", l.Key, l.Customer, l.ExpiresAt.Format(time.RFC3339))
		s.metrics.Transition(metrics.OpCreate, metrics.ResultOK)

		return model.CreationResult{
			Message:     constant.MessageCreated,
			Key:         l.Key,
			ProductName: l.ProductName,
			Customer:    l.Customer,
			Duration:    l.Duration,
			ExpiresAt:   l.ExpiresAt,
			Status:      l.Status,
		}, nil
	}

	s.metrics.Transition(metrics.OpCreate, metrics.ResultError)

	return model.CreationResult{}, pkg.ValidateBusinessError(constant.ErrKeyGeneration, constant.EntityLicense)
}

// List returns every license with its effective status. Nothing is written.
func (s *Service) List(ctx context.Context) ([]*model.License, error) {
	licenses, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Errorf("Failed to list licenses: %v", err)
		return nil, pkg.ValidateInternalError(err, constant.EntityLicense)
	}

	now := s.nowFn()
	for _, l := range licenses {
		l.Status = lifecycle.EffectiveStatus(l, now)
	}

	return licenses, nil
}

// ExpireLicenses persists EXPIRED for every ACTIVE license past its deadline.
func (s *Service) ExpireLicenses(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireActive(ctx, s.nowFn())
	if err != nil {
		s.logger.Errorf("Expiry sweep failed: %v", err)
		return 0, err
	}

	if n > 0 {
		s.logger.Infof("Expired %d licenses", n)
	}

	s.metrics.Expired(n)

	return n, nil
}

func (s *Service) find(ctx context.Context, key string) (*model.License, error) {
	l, err := s.primary.FindByKey(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, pkg.ValidateBusinessError(constant.ErrLicenseNotFound, constant.EntityLicense, pkg.NormalizeKey(key))
	}

	if err != nil {
		s.logger.Errorf("Failed to load license %s: %v", pkg.NormalizeKey(key), err)
		return nil, pkg.ValidateInternalError(err, constant.EntityLicense)
	}

	return l, nil
}

func activationResult(l *model.License, message string) model.ActivationResult {
	activatedAt := l.IssuedAt
	expiresAt := l.ExpiresAt

	return model.ActivationResult{
		Success:     true,
		Message:     message,
		Status:      string(l.Status),
		ActivatedAt: &activatedAt,
		ExpiresAt:   &expiresAt,
	}
}
