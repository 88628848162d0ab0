package tokens

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PurposeReset namespaces password-reset tokens. Sharing the secret with
// access tokens is safe only because every decode goes through the purpose key.
const PurposeReset = "reset-password"

const DefaultResetTTL = time.Hour

// ErrInvalidResetToken is the uniform failure for reset-token verification.
// Callers cannot tell a tampered token from an expired one, so a probing
// attacker learns nothing from the response.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// ResetPayload identifies who a verified reset token belongs to.
type ResetPayload struct {
	Username string
	Email    string
}

// ResetTokenService mints and verifies password-reset tokens. The TTL is
// configured independently from access tokens.
//
// A reset token is not tracked after issuance, so it stays valid for any
// number of resets until it expires. The jti claim is embedded as the hook
// for a consumed-token record if single use is ever enforced.
type ResetTokenService struct {
	codec *Codec
	ttl   time.Duration
}

func NewResetTokenService(codec *Codec, ttl time.Duration) *ResetTokenService {
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	return &ResetTokenService{codec: codec, ttl: ttl}
}

func (s *ResetTokenService) Issue(username, email string) (string, error) {
	return s.codec.Encode(map[string]any{
		"sub":   username,
		"email": email,
		"jti":   uuid.NewString(),
	}, PurposeReset, s.ttl)
}

func (s *ResetTokenService) Verify(token string) (*ResetPayload, error) {
	dec, err := s.codec.Decode(token, PurposeReset, s.ttl)
	if err != nil {
		return nil, ErrInvalidResetToken
	}

	sub, _ := dec.Payload["sub"].(string)
	email, _ := dec.Payload["email"].(string)
	if sub == "" || email == "" {
		return nil, ErrInvalidResetToken
	}

	return &ResetPayload{Username: sub, Email: email}, nil
}
