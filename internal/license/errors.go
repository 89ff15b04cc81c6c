package license

import "errors"

// Machine-readable error codes surfaced to callers. Raw internal faults are
// never exposed; anything unanticipated collapses to CodeValidationError.
const (
	CodeInvalidFormat    = "INVALID_LICENSE_FORMAT"
	CodeNotFound         = "LICENSE_NOT_FOUND"
	CodeInvalidKey       = "INVALID_LICENSE_KEY"
	CodeNotActive        = "LICENSE_NOT_ACTIVE"
	CodeExpired          = "LICENSE_EXPIRED"
	CodeDeviceMismatch   = "DEVICE_MISMATCH"
	CodeAssignmentError  = "DEVICE_ASSIGNMENT_ERROR"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInternalError    = "INTERNAL_ERROR"
)

var (
	// ErrNotFound is returned by the store when no license has the prefix.
	ErrNotFound = errors.New("license not found")
	// ErrAlreadyAssigned is returned when the conditional first-assignment
	// write finds the license already bound by another writer.
	ErrAlreadyAssigned = errors.New("license already assigned")
)
