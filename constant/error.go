package constant

import "errors"

// Business errors with stable codes. pkg.ValidateBusinessError turns them into typed errors.
var (
	ErrMissingProductName    = errors.New("KBX-0001")
	ErrMissingCustomer       = errors.New("KBX-0002")
	ErrInvalidDuration       = errors.New("KBX-0003")
	ErrMissingLicenseKey     = errors.New("KBX-0004")
	ErrLicenseNotFound       = errors.New("KBX-0005")
	ErrLicenseRevoked        = errors.New("KBX-0006")
	ErrLicenseExpired        = errors.New("KBX-0007")
	ErrLicenseAlreadyRevoked = errors.New("KBX-0008")
	ErrKeyGeneration         = errors.New("KBX-0009")
	ErrInvalidRequestBody    = errors.New("KBX-0010")
	ErrInternalServer        = errors.New("KBX-0011")
	ErrLicenseInactive       = errors.New("KBX-0012")
	ErrUnknownStatus         = errors.New("KBX-0013")
)
