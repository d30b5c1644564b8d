package transport

import (
	"net/http"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request) {}

// BearerAuth implements Bearer token authentication.
type BearerAuth struct {
	Token string
}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request) {
	if a.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// HeaderAuth sends the credential in a custom header.
type HeaderAuth struct {
	Header string
	Value  string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request) {
	if a.Value == "" {
		return
	}
	req.Header.Set(a.Header, a.Value)
}
