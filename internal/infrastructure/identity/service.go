// Package identity issues and verifies the tokens exchanged on the
// negotiation protocol. Outbound messages carry a signed token naming
// this connector; inbound tokens are verified before the engine sees
// the message.
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
)

// Service signs and verifies HMAC protocol tokens.
type Service struct {
	connectorID string
	secret      []byte
	tokenTTL    time.Duration
}

func NewService(connectorID, secret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 10 * time.Minute
	}
	return &Service{
		connectorID: connectorID,
		secret:      []byte(secret),
		tokenTTL:    tokenTTL,
	}
}

// IssueToken creates a token for one outbound message.
func (s *Service) IssueToken(ctx context.Context, audience string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": s.connectorID,
		"sub": s.connectorID,
		"aud": audience,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates an inbound bearer token and returns its claims.
func (s *Service) VerifyToken(ctx context.Context, tokenString string) (*domainNegotiation.ClaimToken, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	out := make(map[string]any, len(claims))
	for k, v := range claims {
		out[k] = v
	}
	return &domainNegotiation.ClaimToken{Claims: out}, nil
}
