package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// DeliveryError signals that an outbound email could not be handed to the
// mail transport after retries. Callers must surface it; an OTP that was
// never delivered is not "sent".
type DeliveryError struct {
	Recipient string
	Err       error
}

func NewDeliveryError(recipient string, err error) error {
	return &DeliveryError{Recipient: recipient, Err: err}
}

func (err DeliveryError) Error() string {
	if err.Err == nil {
		return "mail delivery failed"
	}
	return "mail delivery failed: " + err.Err.Error()
}

func (err DeliveryError) Unwrap() error { return err.Err }

func IsDeliveryError(err error) bool {
	var derr *DeliveryError
	return errors.As(err, &derr)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
