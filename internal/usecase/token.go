package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
)

var (
	// ErrInvalidAccessToken indicates the bearer token failed signature or claim checks.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrExpiredAccessToken indicates the bearer token is past its expiry.
	ErrExpiredAccessToken = errors.New("expired access token")
)

const defaultAccessTokenTTL = 15 * time.Minute

// TokenService issues and parses the bearer tokens that carry the session
// identity between requests.
type TokenService struct {
	issuer port.TokenIssuer
	parser port.TokenParser
	ttl    time.Duration
}

// NewTokenService constructs a TokenService. A non-positive ttl falls back to
// the default access token lifetime.
func NewTokenService(issuer port.TokenIssuer, parser port.TokenParser, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultAccessTokenTTL
	}
	return &TokenService{
		issuer: issuer,
		parser: parser,
		ttl:    ttl,
	}
}

// IssueAuthHeader issues an access token for the username and wraps it in an
// Authorization header in the Bearer scheme.
func (s *TokenService) IssueAuthHeader(username string) (http.Header, error) {
	token, err := s.issuer.Issue(username, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	return header, nil
}

// ParseAccessToken validates the token and returns the subject username.
func (s *TokenService) ParseAccessToken(token string) (string, error) {
	username, err := s.parser.Parse(token)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrTokenExpired):
			return "", ErrExpiredAccessToken
		default:
			return "", ErrInvalidAccessToken
		}
	}
	return username, nil
}
