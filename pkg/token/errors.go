package token

import "errors"

var (
	ErrNoRefreshToken = errors.New("no refresh token stored")
	ErrRefreshFailed  = errors.New("token refresh failed")
)
