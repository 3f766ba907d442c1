package slidesvc

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenLifetime is how long an outbound request token stays valid. Tokens are
// minted per request, so the window only needs to cover clock skew plus the
// request itself.
const tokenLifetime = 60 * time.Second

// Token issuer and audience for the service-to-service credential.
const (
	tokenIssuer   = "deckgen-api"
	tokenAudience = "slide-generation-service"
)

// requestSigner mints short-lived HS256 bearer tokens for outbound requests
// to the generation service.
type requestSigner struct {
	key []byte
}

func newRequestSigner(key string) *requestSigner {
	return &requestSigner{key: []byte(key)}
}

// token creates a fresh signed token.
func (s *requestSigner) token() (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign request token: %w", err)
	}
	return signed, nil
}
