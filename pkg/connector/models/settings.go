package models

import "time"

// DefaultJwtHeader carries the service token when no custom header is
// configured.
const DefaultJwtHeader = "Authorization"

// Settings is the connector configuration, loaded once at startup and
// read-only afterwards.
type Settings struct {
	// BaseURL is the public address of this service, used to build
	// absolute callback and download links.
	BaseURL string
	// DocServerURL is the address of the document editing service.
	DocServerURL string
	// ServerSecret keys the signed-link HMAC. Install-specific.
	ServerSecret string
	// JwtSecret is the shared secret for service auth tokens. Empty
	// disables service authentication entirely.
	JwtSecret string
	// JwtHeader is the HTTP header carrying the service token.
	JwtHeader string
	// StorageRoot is the directory documents are persisted under.
	StorageRoot string
	// SubmissionMarkerTTL is how long anonymous "already submitted"
	// markers are kept.
	SubmissionMarkerTTL time.Duration
}

func (s *Settings) JwtEnabled() bool { return s.JwtSecret != "" }

func (s *Settings) TokenHeader() string {
	if s.JwtHeader != "" {
		return s.JwtHeader
	}
	return DefaultJwtHeader
}
