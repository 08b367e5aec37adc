package model

import "time"

// ValidationRequest is the body the daemon posts on every poll.
type ValidationRequest struct {
	ProductName string `json:"productName"`
	Key         string `json:"key"`
}

// ValidationResult is the payload answered by the validation endpoint and
// handed to daemon callbacks.
type ValidationResult struct {
	Valid       bool       `json:"valid"`
	Status      string     `json:"status"`
	ProductName string     `json:"productName,omitempty"`
	Customer    string     `json:"customer,omitempty"`
	Duration    int        `json:"duration,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Message     string     `json:"message,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// ActivationResult is returned by a successful activation.
type ActivationResult struct {
	Success     bool       `json:"success"`
	Message     string     `json:"message"`
	Status      string     `json:"status,omitempty"`
	ActivatedAt *time.Time `json:"activatedAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// RevocationResult is returned by a successful revocation.
type RevocationResult struct {
	Message string `json:"message"`
	Key     string `json:"key"`
	Status  Status `json:"status"`
}

// CreationResult is returned by a successful creation.
type CreationResult struct {
	Message     string    `json:"message"`
	Key         string    `json:"key"`
	ProductName string    `json:"productName"`
	Customer    string    `json:"customer"`
	Duration    int       `json:"duration"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Status      Status    `json:"status"`
}

// ErrorResponse is the non-validation error envelope returned by the server
type ErrorResponse struct {
	Code    string `json:"code"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}
