package errors

import (
	"errors"
	"fmt"
)

// Common error types for the Astrovia web BFF
var (
	// Session / token errors
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrRefreshFailed   = errors.New("refresh failed")
	ErrSessionDecode   = errors.New("session decode failed")

	// Login flow errors
	ErrLoginFailed   = errors.New("login failed")
	ErrCaptchaFailed = errors.New("captcha verification failed")

	// OTP errors
	ErrOTPAttemptsExhausted = errors.New("otp attempts exhausted")
	ErrOTPExpired           = errors.New("otp expired")
	ErrFlowStateMissing     = errors.New("login flow state missing")

	// Relay errors
	ErrSecretNotConfigured = errors.New("signature secret not configured")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
