package anonymous

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

var ErrInvalidToken = errors.New("invalid token")

// Service issues and resolves guest session tokens. Sessions are keyed by a
// generated anonymous id; the cart for that id persists across login/logout.
type Service struct {
	tokens tokenrepo.Repository
	ttl    time.Duration
}

func New(tokens tokenrepo.Repository) *Service {
	return &Service{
		tokens: tokens,
		ttl:    30 * 24 * time.Hour,
	}
}

// Issue mints a fresh anonymous session and its bearer token.
func (s *Service) Issue(ctx context.Context) (token, anonymousID string, err error) {
	anonymousID = uuid.NewString()
	for i := 0; i < 5; i++ {
		token, err = randomToken()
		if err != nil {
			return "", "", err
		}
		anon := anonymousID
		err = s.tokens.Create(ctx, tokenrepo.Token{
			Token:       token,
			AnonymousID: &anon,
			Kind:        "anonymous",
			ExpiresAt:   time.Now().Add(s.ttl),
		})
		if err == nil {
			return token, anonymousID, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", "", err
	}
	return "", "", errors.New("token collision")
}

// LookupByToken resolves a guest token to its anonymous session id.
func (s *Service) LookupByToken(ctx context.Context, token string) (string, error) {
	meta, err := s.tokens.Get(ctx, token)
	if err != nil {
		return "", ErrInvalidToken
	}
	if meta.Kind != "anonymous" || meta.AnonymousID == nil {
		return "", ErrInvalidToken
	}
	if time.Now().After(meta.ExpiresAt) {
		_ = s.tokens.Delete(ctx, token)
		return "", ErrInvalidToken
	}
	return *meta.AnonymousID, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
