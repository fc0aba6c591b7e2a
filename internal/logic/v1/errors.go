// Package v1 provides the placement portal's business logic for API version 1:
// account signup and email verification, sessions, profiles, and the
// application, story and chatbot features around them.
//
// Error Handling:
// This package defines sentinel errors for every caller-visible failure.
// They are wrapped with context using fmt.Errorf("%w") when returned, and
// storage or upstream failures keep the underlying cause as a second %w.
//
// Example Usage:
//
//	if row == nil {
//	    return nil, fmt.Errorf("sign in %q: %w", username, ErrUserNotFound)
//	}
//
//	if err != nil {
//	    return nil, fmt.Errorf("%w: lookup user: %w", ErrStorageFailure, err)
//	}
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrUnverified):
//	    c.JSON(http.StatusForbidden, gin.H{"error": "Please verify your email before signing in"})
//	case errors.Is(err, logicv1.ErrBadCredential):
//	    c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect password"})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
//	}
package v1

import "errors"

// Sentinel errors for placement portal operations.
var (
	// ErrValidationFailed indicates malformed or missing input.
	// HTTP Status: 400 Bad Request
	ErrValidationFailed = errors.New("validation failed")

	// ErrDuplicateCredential indicates the username or email is already registered.
	// HTTP Status: 409 Conflict
	ErrDuplicateCredential = errors.New("username or email already registered")

	// ErrUserNotFound indicates no account matches the username.
	// HTTP Status: 404 Not Found (sign-in reports it so the user can sign up)
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidVerificationLink covers a missing, unknown or already
	// redeemed verification token. The cases are indistinguishable to callers.
	// HTTP Status: 400 Bad Request
	ErrInvalidVerificationLink = errors.New("invalid or expired verification link")

	// ErrUnverified indicates the account exists but its email is not verified.
	// HTTP Status: 403 Forbidden
	ErrUnverified = errors.New("email not verified")

	// ErrBadCredential indicates the password does not match.
	// HTTP Status: 401 Unauthorized
	ErrBadCredential = errors.New("incorrect password")

	// ErrUnauthenticated indicates a missing, unknown or expired session.
	// HTTP Status: 401 Unauthorized (API) or 302 to /signin (pages)
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrStorageFailure indicates the record store or file store failed.
	// HTTP Status: 500 Internal Server Error
	ErrStorageFailure = errors.New("storage failure")

	// ErrUpstreamFailure indicates the chatbot backend failed.
	// HTTP Status: 502 Bad Gateway
	ErrUpstreamFailure = errors.New("upstream failure")
)
