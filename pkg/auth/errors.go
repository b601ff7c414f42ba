package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when the API rejects the email and
	// password pair.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrMissingToken is returned when a login response carries no token.
	ErrMissingToken = errors.New("auth: response has no access token")
	// ErrNoSession is returned by token sources before a login succeeded.
	ErrNoSession = errors.New("auth: no active session")
)
