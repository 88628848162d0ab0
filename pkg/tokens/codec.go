// Package tokens implements the signed-token layer: a purpose-tagged codec for
// compact signed payloads, and the access/reset token services built on it.
package tokens

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrBadSignature = errors.New("token signature mismatch")
	ErrExpired      = errors.New("token expired")
)

// Codec mints and verifies compact URL-safe signed payloads with an embedded
// expiry. Tokens are HS256 JWTs, but the signing key is derived per purpose as
// HMAC-SHA256(secret, purpose), so a token minted for one purpose can never
// verify under another even though the service holds a single secret.
type Codec struct {
	secret []byte

	// Now supplies the current time for expiry checks. Tests override it.
	Now func() time.Time
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, Now: time.Now}
}

func (c *Codec) purposeKey(purpose string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(purpose))
	return mac.Sum(nil)
}

// DecodedToken is the result of a successful Decode.
type DecodedToken struct {
	Payload   map[string]any
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Encode serializes payload plus iat/exp claims and signs it under the
// purpose-derived key. The signature covers the whole claim set, so payload,
// expiry and purpose cannot be altered independently.
func (c *Codec) Encode(payload map[string]any, purpose string, ttl time.Duration) (string, error) {
	now := c.Now()

	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.purposeKey(purpose))
}

// Decode verifies the signature under the purpose-derived key and the embedded
// expiry, then returns the original payload. A maxAge > 0 additionally bounds
// the token's age from its iat claim, whichever limit is stricter. Failures
// are ErrExpired for an aged-out token and ErrBadSignature for everything
// else, including decoding under the wrong purpose.
func (c *Codec) Decode(token, purpose string, maxAge time.Duration) (*DecodedToken, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return c.purposeKey(purpose), nil
	}, jwt.WithTimeFunc(c.Now), jwt.WithExpirationRequired(), jwt.WithIssuedAt())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrBadSignature
	}
	if !tkn.Valid {
		return nil, ErrBadSignature
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrBadSignature
	}
	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, ErrBadSignature
	}

	if maxAge > 0 && c.Now().After(iat.Add(maxAge)) {
		return nil, ErrExpired
	}

	payload := make(map[string]any, len(claims))
	for k, v := range claims {
		if k == "iat" || k == "exp" {
			continue
		}
		payload[k] = v
	}

	return &DecodedToken{
		Payload:   payload,
		IssuedAt:  iat.Time,
		ExpiresAt: exp.Time,
	}, nil
}
