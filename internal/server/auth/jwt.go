package auth

import (
	"time"

	"github.com/dmitrijs2005/tunekeeper/internal/common"
	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// signingMethod is pinned here; the "alg" header of an incoming token is
// never trusted to choose the verification algorithm.
var signingMethod = jwt.SigningMethodHS256

// Clock returns the current time. Tests swap it to move time forward.
type Clock func() time.Time

// tokenClaims is the wire form: sub, exp and type, nothing else.
type tokenClaims struct {
	jwt.RegisteredClaims
	Type models.Purpose `json:"type"`
}

// TokenCodec signs and verifies claim sets with a symmetric secret.
type TokenCodec struct {
	secret []byte
	now    Clock
}

// NewTokenCodec builds a codec for secret. A nil clock means time.Now.
func NewTokenCodec(secret []byte, now Clock) *TokenCodec {
	if now == nil {
		now = time.Now
	}
	return &TokenCodec{secret: secret, now: now}
}

// Now exposes the codec clock so issuers stamp expiries on the same timeline
// the codec checks them against.
func (c *TokenCodec) Now() time.Time {
	return c.now()
}

// Encode serialises and signs claims. Expiry is carried with one-second
// precision.
func (c *TokenCodec) Encode(claims models.Claims) (string, error) {
	token := jwt.NewWithClaims(signingMethod, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		Type: claims.Purpose,
	})
	return token.SignedString(c.secret)
}

// Decode verifies the signature, then the expiry, and returns the claims.
// Every failure (bad signature, other secret, malformed input, lapsed expiry,
// missing subject or unknown purpose) is reported as common.ErrTokenInvalid
// without further detail.
func (c *TokenCodec) Decode(raw string) (models.Claims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != signingMethod {
			return nil, common.ErrTokenInvalid
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return models.Claims{}, common.ErrTokenInvalid
	}

	if claims.Subject == "" || !claims.Type.Valid() {
		return models.Claims{}, common.ErrTokenInvalid
	}

	return models.Claims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
		Purpose:   claims.Type,
	}, nil
}
