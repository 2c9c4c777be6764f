package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Engagement-related errors
	ErrEngagementNotFound      = errors.New("engagement not found")
	ErrEngagementNotEditable   = errors.New("engagement is not editable")
	ErrInvalidEngagementWindow = errors.New("invalid engagement window")

	// Association component errors
	ErrAssociationNotFound   = errors.New("customer association not found")
	ErrInvalidConfigSet      = errors.New("invalid configuration set")
	ErrConfigSetDateOccupied = errors.New("configuration set start date is occupied")
	ErrConfigSetNotDeletable = errors.New("configuration set cannot be deleted")

	// Country errors
	ErrCountryNotFound = errors.New("country not found")

	// Cache errors
	ErrCacheNotAvailable = errors.New("cache not available")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsEngagementNotFound(err error) bool {
	return errors.Is(err, ErrEngagementNotFound)
}

func IsEngagementNotEditable(err error) bool {
	return errors.Is(err, ErrEngagementNotEditable)
}

func IsInvalidEngagementWindow(err error) bool {
	return errors.Is(err, ErrInvalidEngagementWindow)
}

func IsAssociationNotFound(err error) bool {
	return errors.Is(err, ErrAssociationNotFound)
}

func IsInvalidConfigSet(err error) bool {
	return errors.Is(err, ErrInvalidConfigSet)
}

func IsConfigSetDateOccupied(err error) bool {
	return errors.Is(err, ErrConfigSetDateOccupied)
}

func IsConfigSetNotDeletable(err error) bool {
	return errors.Is(err, ErrConfigSetNotDeletable)
}

func IsCountryNotFound(err error) bool {
	return errors.Is(err, ErrCountryNotFound)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}
