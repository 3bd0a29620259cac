package httpx

import (
	"context"
	"errors"
)

var ErrStaticTokenRejected = errors.New("static token is empty or rejected")

// StaticToken authenticator for services that issue a long-lived API token.
// Authenticate cannot obtain a new token, so a 401 from upstream surfaces as an error.
type StaticToken string

func (t StaticToken) Authenticate(context.Context) error {
	return ErrStaticTokenRejected
}

func (t StaticToken) BearerToken() string {
	return string(t)
}
