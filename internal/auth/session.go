// Package auth models the opaque session the authentication provider
// attaches to each request: an optional Discord OAuth access token and the
// subject's user id. Absence of the credential is a normal state that
// downstream services check explicitly.
package auth

// Session carries the caller's identity for one request.
type Session struct {
	AccessToken string
	UserID      string
}

// Authenticated reports whether the session carries an access credential.
// Services treat an unauthenticated session as a silent empty-result state,
// not an error.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}
