package model

import (
	"time"

	"github.com/google/uuid"
)

// Status is the persisted lifecycle state of a license.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusActive  Status = "ACTIVE"
	StatusExpired Status = "EXPIRED"
	StatusRevoked Status = "REVOKED"
)

// Known reports whether s is one of the four lifecycle states.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusActive, StatusExpired, StatusRevoked:
		return true
	}

	return false
}

// License is the persisted license grant. Key, ProductName, Customer and Duration
// never change after creation.
type License struct {
	ID          uuid.UUID `json:"id"`
	Key         string    `json:"key"`
	ProductName string    `json:"productName"`
	Customer    string    `json:"customer"`
	Duration    int       `json:"duration"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Status      Status    `json:"status"`
	OwnerID     string    `json:"ownerId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateLicenseInput is the body of a creation request.
type CreateLicenseInput struct {
	ProductName string `json:"productName"`
	Customer    string `json:"customer"`
	Duration    int    `json:"duration"`
	OwnerID     string `json:"ownerId,omitempty"`
}

// KeyRequest carries a license key for activation and revocation.
type KeyRequest struct {
	Key         string `json:"key"`
	ProductName string `json:"productName,omitempty"`
}

// Config is the SDK configuration supplied by a consuming application.
type Config struct {
	ProductName        string `json:"productName"`
	LicenseKey         string `json:"key"`
	APIURL             string `json:"apiUrl,omitempty"`
	Endpoint           string `json:"endpoint,omitempty"`
	IntervalSeconds    int    `json:"intervalSeconds,omitempty"`
	HTTPTimeoutSeconds int    `json:"httpTimeoutSeconds,omitempty"`
}
