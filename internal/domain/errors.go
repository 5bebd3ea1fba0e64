package domain

import "errors"

var (
	// ErrValidation marks a draft that is missing required fields for the
	// chosen service type or violates a money rule.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable marks a cart holding items that may not be ordered for
	// the selected date.
	ErrUnavailable = errors.New("items unavailable for selected date")

	// ErrDuplicateSubmission marks a draft whose fingerprint was already
	// submitted by the same session.
	ErrDuplicateSubmission = errors.New("duplicate submission")

	// ErrPartialWrite marks an order whose row was committed but whose line
	// items failed to insert. The order stays in place for manual
	// reconciliation; it is never rolled back.
	ErrPartialWrite = errors.New("order saved without all line items")

	// ErrPreconditionFailed marks a status transition not allowed from the
	// order's current status.
	ErrPreconditionFailed = errors.New("invalid status transition")

	// ErrConfirmationRequired marks a rejection attempted without the
	// explicit confirmation step.
	ErrConfirmationRequired = errors.New("rejection requires confirmation")

	// ErrSyncFailed marks a ledger export dispatch that failed; the order
	// stays approved and unsynced so an operator can retry.
	ErrSyncFailed = errors.New("ledger sync failed")

	ErrOrderNotFound = errors.New("order not found")
)
