package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
)

// SessionIssuer mints a session/refresh token pair for an account.
type SessionIssuer struct {
	codec      *TokenCodec
	sessionTTL time.Duration
	refreshTTL time.Duration
}

func NewSessionIssuer(codec *TokenCodec, sessionTTL, refreshTTL time.Duration) *SessionIssuer {
	return &SessionIssuer{codec: codec, sessionTTL: sessionTTL, refreshTTL: refreshTTL}
}

// IssuePair signs two independent claim sets for accountID. The reported
// session lifetime comes from configuration, not from the minted token.
func (s *SessionIssuer) IssuePair(accountID string) (models.TokenPair, error) {
	now := s.codec.Now().Truncate(time.Second)

	session, err := s.codec.Encode(models.Claims{
		Subject:   accountID,
		ExpiresAt: now.Add(s.sessionTTL),
		Purpose:   models.PurposeSession,
	})
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("sign session token: %w", err)
	}

	refresh, err := s.codec.Encode(models.Claims{
		Subject:   accountID,
		ExpiresAt: now.Add(s.refreshTTL),
		Purpose:   models.PurposeRefresh,
	})
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return models.TokenPair{
		SessionToken:      session,
		RefreshToken:      refresh,
		SessionTTLSeconds: int64(s.sessionTTL / time.Second),
	}, nil
}
