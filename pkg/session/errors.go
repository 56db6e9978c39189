package session

import "errors"

var (
	// ErrLoginFailed is returned when the backend accepted the credentials
	// but did not hand back a token.
	ErrLoginFailed = errors.New("login failed: no token in response")
	// ErrNotSignedIn is returned by operations that need an authenticated session.
	ErrNotSignedIn = errors.New("not signed in")
)
