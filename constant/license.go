package constant

// Duration bounds in months accepted at creation
const (
	MinDurationMonths = 1
	MaxDurationMonths = 12
)

// Key format: PRE-XXXX-XXXX-XXXX
const (
	KeyPrefixLength   = 3
	KeySegments       = 3
	KeySegmentBytes   = 2
	KeyPrefixFiller   = "X"
	KeyFallbackPrefix = "KEY"
	// KeyGenerationAttempts bounds retries on a key collision
	KeyGenerationAttempts = 5
)

// Response status values returned by the validation endpoint
const (
	ResponseStatusActive  = "active"
	ResponseStatusPending = "pending"
	ResponseStatusExpired = "expired"
	ResponseStatusRevoked = "revoked"
	ResponseStatusInvalid = "invalid"
	ResponseStatusUnknown = "unknown"
	ResponseStatusError   = "error"
)

// Messages attached to validation responses
const (
	MessageKeyNotFound    = "Key does not exist"
	MessageRevoked        = "License revoked by developer"
	MessageExpired        = "License has expired"
	MessagePending        = "License has not been activated"
	MessageUnknownStatus  = "Unknown license status"
	MessageValidationFail = "Validation failed"
)

// TransitionAttempts bounds re-reads after losing a compare-and-swap race
const TransitionAttempts = 3

// Messages attached to lifecycle operation responses
const (
	MessageActivated      = "License activated successfully"
	MessageAlreadyActive  = "License already active"
	MessageRevokedSuccess = "License status updated to REVOKED"
	MessageCreated        = "License created successfully"
)

// EntityLicense names the entity in typed errors
const EntityLicense = "License"
