package registration

import "fmt"

type ErrorReason string

const (
	REASON_VALIDATION_FAILED    ErrorReason = "VALIDATION_FAILED"
	REASON_DUPLICATE_SUBMISSION ErrorReason = "DUPLICATE_SUBMISSION"
	REASON_INCOMPLETE_RECORD    ErrorReason = "INCOMPLETE_RECORD"
	REASON_NO_CURRENT_RECORD    ErrorReason = "NO_CURRENT_RECORD"
	REASON_ALREADY_PAID         ErrorReason = "ALREADY_PAID"
	REASON_PAYMENT_UNAVAILABLE  ErrorReason = "PAYMENT_UNAVAILABLE"
	REASON_CHECKOUT_FAILED      ErrorReason = "CHECKOUT_FAILED"
	REASON_FAILED_TO_WRITE      ErrorReason = "FAILED_TO_WRITE"
	REASON_FAILED_TO_FETCH      ErrorReason = "FAILED_TO_FETCH"
)

type Error struct {
	Reason  ErrorReason
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s. Cause: %s", e.Reason, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newRegistrationError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewValidationFailedError(message string) *Error {
	return newRegistrationError(REASON_VALIDATION_FAILED, message, nil)
}

func NewDuplicateSubmissionError(message string) *Error {
	return newRegistrationError(REASON_DUPLICATE_SUBMISSION, message, nil)
}

func NewIncompleteRecordError(message string) *Error {
	return newRegistrationError(REASON_INCOMPLETE_RECORD, message, nil)
}

func NewNoCurrentRecordError(message string) *Error {
	return newRegistrationError(REASON_NO_CURRENT_RECORD, message, nil)
}

func NewAlreadyPaidError(message string) *Error {
	return newRegistrationError(REASON_ALREADY_PAID, message, nil)
}

func NewPaymentUnavailableError(message string) *Error {
	return newRegistrationError(REASON_PAYMENT_UNAVAILABLE, message, nil)
}

func NewCheckoutFailedError(message string, cause error) *Error {
	return newRegistrationError(REASON_CHECKOUT_FAILED, message, cause)
}

func NewFailedToWriteError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_WRITE, message, cause)
}

func NewFailedToFetchError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_FETCH, message, cause)
}
