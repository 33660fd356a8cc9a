package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/tunekeeper/internal/common"
	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable clock shared by codec and test.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	clock := newClock()
	codec := NewTokenCodec([]byte("secret"), clock.Now)

	for _, p := range []models.Purpose{models.PurposeSession, models.PurposeRefresh} {
		in := models.Claims{Subject: "acc-1", ExpiresAt: clock.t.Add(time.Hour), Purpose: p}

		raw, err := codec.Encode(in)
		require.NoError(t, err)
		assert.Len(t, strings.Split(raw, "."), 3)

		out, err := codec.Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, in.Subject, out.Subject)
		assert.Equal(t, in.Purpose, out.Purpose)
		assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt))
	}
}

func TestTokenCodec_InvalidIsUniform(t *testing.T) {
	clock := newClock()
	codec := NewTokenCodec([]byte("secret"), clock.Now)
	other := NewTokenCodec([]byte("another-secret"), clock.Now)

	valid, err := codec.Encode(models.Claims{Subject: "acc-1", ExpiresAt: clock.t.Add(time.Minute), Purpose: models.PurposeSession})
	require.NoError(t, err)
	foreign, err := other.Encode(models.Claims{Subject: "acc-1", ExpiresAt: clock.t.Add(time.Minute), Purpose: models.PurposeSession})
	require.NoError(t, err)
	expiring, err := codec.Encode(models.Claims{Subject: "acc-1", ExpiresAt: clock.t.Add(time.Second), Purpose: models.PurposeSession})
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	clock.Advance(time.Second)

	cases := map[string]string{
		"other secret": foreign,
		"corrupted":    valid[:len(valid)-4] + "abcd",
		"tampered sig": tampered,
		"garbage":      "not-a-token",
		"empty":        "",
		"expired":      expiring,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decode(raw)
			assert.Equal(t, common.ErrTokenInvalid, err, "all failures must collapse to the same error value")
		})
	}
}

func TestTokenCodec_ExpiryBoundary(t *testing.T) {
	clock := newClock()
	codec := NewTokenCodec([]byte("secret"), clock.Now)

	raw, err := codec.Encode(models.Claims{Subject: "acc-1", ExpiresAt: clock.t.Add(10 * time.Second), Purpose: models.PurposeSession})
	require.NoError(t, err)

	clock.Advance(9 * time.Second)
	_, err = codec.Decode(raw)
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = codec.Decode(raw)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	clock := newClock()
	codec := NewTokenCodec([]byte("secret"), clock.Now)
	exp := jwt.NewNumericDate(clock.t.Add(time.Hour))

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "acc-1", ExpiresAt: exp},
		Type:             models.PurposeSession,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "acc-1", ExpiresAt: exp},
		Type:             models.PurposeSession,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for _, raw := range []string{none, hs512} {
		_, err := codec.Decode(raw)
		assert.ErrorIs(t, err, common.ErrTokenInvalid)
	}
}

func TestTokenCodec_RejectsIncompleteClaims(t *testing.T) {
	clock := newClock()
	codec := NewTokenCodec([]byte("secret"), clock.Now)
	exp := jwt.NewNumericDate(clock.t.Add(time.Hour))

	sign := func(c tokenClaims) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
		require.NoError(t, err)
		return raw
	}

	cases := map[string]string{
		"no subject":      sign(tokenClaims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}, Type: models.PurposeSession}),
		"no expiry":       sign(tokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "acc-1"}, Type: models.PurposeSession}),
		"unknown purpose": sign(tokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "acc-1", ExpiresAt: exp}, Type: "access"}),
		"no purpose":      sign(tokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "acc-1", ExpiresAt: exp}}),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decode(raw)
			assert.ErrorIs(t, err, common.ErrTokenInvalid)
		})
	}
}

func TestSessionIssuer_IssuePair(t *testing.T) {
	clock := newClock()
	clock.t = clock.t.Add(400 * time.Millisecond)
	codec := NewTokenCodec([]byte("secret"), clock.Now)
	issuer := NewSessionIssuer(codec, 15*time.Minute, 7*24*time.Hour)

	pair, err := issuer.IssuePair("acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(900), pair.SessionTTLSeconds)
	assert.NotEqual(t, pair.SessionToken, pair.RefreshToken)

	session, err := codec.Decode(pair.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", session.Subject)
	assert.Equal(t, models.PurposeSession, session.Purpose)
	assert.True(t, session.ExpiresAt.Equal(clock.t.Truncate(time.Second).Add(15*time.Minute)))

	refresh, err := codec.Decode(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", refresh.Subject)
	assert.Equal(t, models.PurposeRefresh, refresh.Purpose)
	assert.True(t, refresh.ExpiresAt.Equal(clock.t.Truncate(time.Second).Add(7*24*time.Hour)))

	clock.Advance(16 * time.Minute)
	_, err = codec.Decode(pair.SessionToken)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
	_, err = codec.Decode(pair.RefreshToken)
	assert.NoError(t, err)
}
