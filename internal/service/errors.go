package service

import "errors"

// Validation failures. Handlers map these to 400 responses.
var (
	ErrInvalidEdition   = errors.New("edition must be one of Icon, Statement, Association, City")
	ErrNegativeQuantity = errors.New("quantities must not be negative")
	ErrInvalidAmount    = errors.New("amount must be a positive integer")
	ErrEmptyPatch       = errors.New("no fields to update")
	ErrInvalidThreshold = errors.New("low_stock_threshold must not be negative")
	ErrMissingPlayer    = errors.New("player_name is required")
	ErrEmptyTranscript  = errors.New("transcript is required")
	ErrInvalidCSV       = errors.New("invalid csv")
)

// IsValidation reports whether err is one of the validation errors above.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidEdition, ErrNegativeQuantity, ErrInvalidAmount, ErrEmptyPatch,
		ErrInvalidThreshold, ErrMissingPlayer, ErrEmptyTranscript, ErrInvalidCSV,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
