package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
)

var (
	// ErrTokenInvalid indicates the token failed signature or claim validation.
	ErrTokenInvalid = errors.New("jwt: invalid token")
	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = errors.New("jwt: token expired")
)

// JWTManager signs and verifies RS256 access tokens whose subject carries the
// account username. The signing kid travels in the token header so key
// rotation only needs the provider to know both keys.
type JWTManager struct {
	provider KeyProvider
	kid      string
	issuer   string
	audience string
}

// NewJWTManager constructs a JWTManager signing with the key registered
// under kid. The issuer and audience claims are stamped on every token and
// enforced on parse.
func NewJWTManager(provider KeyProvider, kid, issuer, audience string) *JWTManager {
	return &JWTManager{
		provider: provider,
		kid:      kid,
		issuer:   issuer,
		audience: audience,
	}
}

// Issue signs an access token with the supplied subject and lifetime.
func (m *JWTManager) Issue(subject string, ttl time.Duration) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", fmt.Errorf("jwt: subject is required")
	}

	signingKey, err := m.provider.SigningKey()
	if err != nil {
		return "", fmt.Errorf("jwt: get signing key: %w", err)
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    m.issuer,
		Audience:  jwt.ClaimStrings{m.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = m.kid

	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// Parse validates the token and returns its subject.
func (m *JWTManager) Parse(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, m.verificationKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}

func (m *JWTManager) verificationKey(token *jwt.Token) (any, error) {
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		kid = m.kid
	}

	key, err := m.provider.VerificationKey(kid)
	if err != nil {
		return nil, fmt.Errorf("jwt: verification key: %w", err)
	}
	return key, nil
}
