package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// Separator joins the signed parameters inside a link key. Parameter
// values must not contain it, Sign rejects them.
const Separator = "?"

var (
	ErrInvalidKey       = errors.New("invalid link key")
	ErrReservedChar     = errors.New("link parameter contains reserved separator")
	ErrMissingParameter = errors.New("at least one link parameter is required")
)

// Signer creates and verifies tamper-evident link keys. The key embeds an
// ordered list of opaque string parameters together with an HMAC-SHA256
// signature over them, so verification needs no server-side state beyond
// the secret.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign joins the parameters with the separator, signs the joined payload
// and returns the url-safe key: b64url(b64url(mac) + "?" + payload).
// Deterministic for a given secret and parameter list.
func (s *Signer) Sign(parameters []string) (string, error) {
	if len(parameters) == 0 {
		return "", ErrMissingParameter
	}
	for _, p := range parameters {
		if strings.Contains(p, Separator) {
			return "", ErrReservedChar
		}
	}

	payload := strings.Join(parameters, Separator)
	signature := base64.RawURLEncoding.EncodeToString(s.mac(payload))

	return base64.RawURLEncoding.EncodeToString([]byte(signature + Separator + payload)), nil
}

// Verify decodes a link key and returns the embedded parameters, or
// ErrInvalidKey when the key is malformed or the signature does not match.
// Parameters are never returned on failure.
func (s *Signer) Verify(key string) ([]string, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return nil, ErrInvalidKey
	}

	segments := strings.Split(string(decoded), Separator)
	if len(segments) < 2 {
		return nil, ErrInvalidKey
	}

	signature := segments[0]
	parameters := segments[1:]

	expected := base64.RawURLEncoding.EncodeToString(s.mac(strings.Join(parameters, Separator)))
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return nil, ErrInvalidKey
	}

	return parameters, nil
}

func (s *Signer) mac(payload string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(payload))
	return h.Sum(nil)
}
