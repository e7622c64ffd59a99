package errors

import "errors"

var (
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailAlreadyVerified is returned when signing up with an email that is registered and verified.
	ErrEmailAlreadyVerified = errors.New("email already registered and verified")
	// ErrEmailNotVerified is returned when logging in before the email is verified.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrInvalidOTP is returned when the submitted code does not match the outstanding challenge.
	ErrInvalidOTP = errors.New("invalid otp")
	// ErrOTPExpired is returned when the outstanding challenge has lapsed.
	ErrOTPExpired = errors.New("otp has expired")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid password")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
