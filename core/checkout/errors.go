package checkout

import (
	"errors"
	"strings"
)

var (
	// ErrValidation is matched by ValidationErrors.
	ErrValidation = errors.New("checkout: invalid order request")
	// ErrEmptyCart is returned when placing an order with nothing in the cart.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrOrderFailed is returned when the order service rejected the order.
	ErrOrderFailed = errors.New("checkout: order could not be placed")
	// ErrMissingOrderID is returned when uploading a proof without an order.
	ErrMissingOrderID = errors.New("checkout: order id is required")
	// ErrProofEmpty is returned for an empty payment proof.
	ErrProofEmpty = errors.New("checkout: payment proof is empty")
	// ErrProofTooLarge is returned when the proof exceeds the size limit.
	ErrProofTooLarge = errors.New("checkout: payment proof is too large")
	// ErrProofType is returned when the proof is neither an image nor a PDF.
	ErrProofType = errors.New("checkout: payment proof must be an image or a PDF")
	// ErrUploadFailed is returned when the order service rejected the proof.
	ErrUploadFailed = errors.New("checkout: payment proof upload failed")
)

// FieldError describes one invalid field of an order request.
type FieldError struct {
	Field          string `json:"field"`
	Message        string `json:"message"`
	TranslationKey string `json:"translation_key"`
}

// ValidationErrors lists every invalid field of a request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "checkout: invalid order request: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns the names of the invalid fields.
func (v ValidationErrors) Fields() []string {
	out := make([]string, len(v))
	for i, fe := range v {
		out[i] = fe.Field
	}
	return out
}

func (v *ValidationErrors) add(field, message, key string) {
	*v = append(*v, FieldError{Field: field, Message: message, TranslationKey: key})
}
