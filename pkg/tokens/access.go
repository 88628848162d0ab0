package tokens

import (
	"errors"
	"time"
)

// PurposeAccess namespaces access tokens within the shared signing secret.
const PurposeAccess = "access"

const DefaultAccessTTL = 15 * time.Minute

// ErrMalformedClaims is returned when a token passes signature and expiry
// checks but is missing the subject or role claim.
var ErrMalformedClaims = errors.New("token claims missing subject or role")

// AccessClaims carries the verified identity of an access token.
type AccessClaims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// AccessTokenService mints and verifies short-lived access tokens carrying
// subject identity and role. It never touches the user store; resolving the
// live user record is the guard's job.
type AccessTokenService struct {
	codec *Codec
	ttl   time.Duration
}

func NewAccessTokenService(codec *Codec, ttl time.Duration) *AccessTokenService {
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	return &AccessTokenService{codec: codec, ttl: ttl}
}

// TTL returns the configured access-token lifetime.
func (s *AccessTokenService) TTL() time.Duration { return s.ttl }

func (s *AccessTokenService) Issue(username, role string) (string, error) {
	return s.codec.Encode(map[string]any{
		"sub":  username,
		"role": role,
	}, PurposeAccess, s.ttl)
}

func (s *AccessTokenService) Verify(token string) (*AccessClaims, error) {
	dec, err := s.codec.Decode(token, PurposeAccess, 0)
	if err != nil {
		return nil, err
	}

	sub, _ := dec.Payload["sub"].(string)
	role, _ := dec.Payload["role"].(string)
	if sub == "" || role == "" {
		return nil, ErrMalformedClaims
	}

	return &AccessClaims{Subject: sub, Role: role, ExpiresAt: dec.ExpiresAt}, nil
}
