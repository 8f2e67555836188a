package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrImmutableRecord indicates an update or delete attempt against a write-once record.
var ErrImmutableRecord = errors.New("record is immutable")

// ErrSequenceConflict indicates a duplicate or non-consecutive ledger sequence number.
var ErrSequenceConflict = errors.New("sequence number conflict")

// ErrPeriodClosed indicates a write attempt into a closed or locked accounting period.
var ErrPeriodClosed = errors.New("accounting period is closed")

// ErrEntryVoided indicates an operation against an already voided journal entry.
var ErrEntryVoided = errors.New("journal entry is voided")

// ErrUnbalanced indicates debits and credits differ beyond the accepted tolerance.
var ErrUnbalanced = errors.New("debits and credits do not balance")

// ErrForbidden indicates the acting user lacks permission for the operation.
var ErrForbidden = errors.New("operation not permitted for actor")

// ErrSequenceExhausted indicates the numbering counter reached its configured ceiling.
var ErrSequenceExhausted = errors.New("sequence counter exhausted")
