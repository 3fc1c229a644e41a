package service

import "errors"

var (
	ErrTodoNotFound       = errors.New("Todo not found")
	ErrUserNotFound       = errors.New("User not found")
	ErrUserAlreadyExists  = errors.New("User already exists")
	ErrInvalidCredentials = errors.New("Invalid credentials")
)

// ValidationError carries a client-facing message for a 400 response.
// Handlers detect it with errors.As and surface Message verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(message string) error {
	return &ValidationError{Message: message}
}
