package tide

import "fmt"

// UKHOAPIError represents a failure talking to the EasyTide service
type UKHOAPIError struct {
	Message string
	Err     error
}

func (e *UKHOAPIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("UKHO API error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("UKHO API error: %s", e.Message)
}

func (e *UKHOAPIError) Unwrap() error {
	return e.Err
}

func NewUKHOAPIError(message string, err error) *UKHOAPIError {
	return &UKHOAPIError{
		Message: message,
		Err:     err,
	}
}

// InvalidRequestError is returned for requests that can never succeed,
// such as an empty station id.
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string {
	return e.Message
}

func NewInvalidRequestError(message string) *InvalidRequestError {
	return &InvalidRequestError{
		Message: message,
	}
}
