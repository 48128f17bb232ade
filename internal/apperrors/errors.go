package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates that the caller presented no usable credential.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates that the caller's roles grant none of the required privileges.
var ErrForbidden = errors.New("forbidden")

// ErrLedger wraps any failure reported by the ledger backend. Backend-specific
// error objects never cross the service boundary; only the message is carried.
var ErrLedger = errors.New("ledger backend failure")

// ErrPartialCreation indicates the ledger created fewer accounts than were
// requested. The accounts that were created have already been persisted by the
// time this error is returned.
var ErrPartialCreation = errors.New("ledger created fewer accounts than requested")

// ErrNotSupported indicates the configured ledger backend does not implement
// an optional lifecycle operation.
var ErrNotSupported = errors.New("operation not supported by ledger backend")
