// Package lifecycle holds the license state machine. Every function is pure:
// it takes a license record and the current time and decides, leaving
// persistence to the caller.
//
//	PENDING --activate--> ACTIVE --(now > expiresAt)--> EXPIRED
//	PENDING/ACTIVE --revoke--> REVOKED
//
// REVOKED and EXPIRED are terminal.
package lifecycle

import (
	"strings"
	"time"

	"github.com/keybox-dev/keybox-go/constant"
	"github.com/keybox-dev/keybox-go/model"
)

// IsExpired is the single expiry predicate shared by lazy evaluation and the sweep.
func IsExpired(l *model.License, now time.Time) bool {
	return l.Status == model.StatusActive && now.After(l.ExpiresAt)
}

// EffectiveStatus returns the status a reader should observe at now. It differs
// from the stored status only for an ACTIVE license past its deadline.
func EffectiveStatus(l *model.License, now time.Time) model.Status {
	if IsExpired(l, now) {
		return model.StatusExpired
	}

	return l.Status
}

// AddMonths adds calendar months the way time.AddDate does, so Jan 31 plus one
// month normalizes into March instead of producing Feb 31.
func AddMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}

// CheckCreate validates a creation request.
func CheckCreate(in model.CreateLicenseInput) error {
	if strings.TrimSpace(in.ProductName) == "" {
		return constant.ErrMissingProductName
	}

	if strings.TrimSpace(in.Customer) == "" {
		return constant.ErrMissingCustomer
	}

	if in.Duration < constant.MinDurationMonths || in.Duration > constant.MaxDurationMonths {
		return constant.ErrInvalidDuration
	}

	return nil
}

// New builds a PENDING license. expiresAt is fixed here and is not recomputed on activation.
func New(in model.CreateLicenseInput, key string, now time.Time) (*model.License, error) {
	if err := CheckCreate(in); err != nil {
		return nil, err
	}

	return &model.License{
		Key:         key,
		ProductName: strings.TrimSpace(in.ProductName),
		Customer:    strings.TrimSpace(in.Customer),
		Duration:    in.Duration,
		IssuedAt:    now,
		ExpiresAt:   AddMonths(now, in.Duration),
		Status:      model.StatusPending,
		OwnerID:     in.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Evaluate answers a validation request for l at now. A nil license means the
// key was not found.
func Evaluate(l *model.License, now time.Time) model.ValidationResult {
	if l == nil {
		return model.ValidationResult{
			Valid:   false,
			Status:  constant.ResponseStatusInvalid,
			Message: constant.MessageKeyNotFound,
		}
	}

	if !l.Status.Known() {
		return model.ValidationResult{
			Valid:   false,
			Status:  constant.ResponseStatusUnknown,
			Message: constant.MessageUnknownStatus,
		}
	}

	expiresAt := l.ExpiresAt

	switch EffectiveStatus(l, now) {
	case model.StatusRevoked:
		return model.ValidationResult{
			Valid:   false,
			Status:  constant.ResponseStatusRevoked,
			Message: constant.MessageRevoked,
		}
	case model.StatusPending:
		return model.ValidationResult{
			Valid:   false,
			Status:  constant.ResponseStatusPending,
			Message: constant.MessagePending,
		}
	case model.StatusExpired:
		return model.ValidationResult{
			Valid:     false,
			Status:    constant.ResponseStatusExpired,
			Message:   constant.MessageExpired,
			ExpiresAt: &expiresAt,
		}
	default: // ACTIVE
		return model.ValidationResult{
			Valid:       true,
			Status:      constant.ResponseStatusActive,
			ProductName: l.ProductName,
			Customer:    l.Customer,
			Duration:    l.Duration,
			ExpiresAt:   &expiresAt,
		}
	}
}

// Activate decides the activation of l at now. It returns the license to persist
// and whether anything changed; an ACTIVE license comes back unchanged.
func Activate(l *model.License, now time.Time) (model.License, bool, error) {
	next := *l

	if !l.Status.Known() {
		return next, false, constant.ErrUnknownStatus
	}

	switch EffectiveStatus(l, now) {
	case model.StatusRevoked:
		return next, false, constant.ErrLicenseRevoked
	case model.StatusExpired:
		return next, false, constant.ErrLicenseExpired
	case model.StatusActive:
		return next, false, nil
	default: // PENDING
		next.Status = model.StatusActive
		next.IssuedAt = now
		next.UpdatedAt = now

		return next, true, nil
	}
}

// Revoke decides the revocation of l at now. Revoking twice is a conflict and an
// expired license cannot be revoked. Like activation, a status outside the four
// known ones is never overwritten.
func Revoke(l *model.License, now time.Time) (model.License, error) {
	next := *l

	if !l.Status.Known() {
		return next, constant.ErrUnknownStatus
	}

	switch EffectiveStatus(l, now) {
	case model.StatusRevoked:
		return next, constant.ErrLicenseAlreadyRevoked
	case model.StatusExpired:
		return next, constant.ErrLicenseExpired
	}

	next.Status = model.StatusRevoked
	next.UpdatedAt = now

	return next, nil
}
