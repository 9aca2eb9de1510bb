package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the user id in the subject and a unique token id for revocation
type Claims struct {
	jwt.RegisteredClaims
}

// JWTService issues and validates session tokens
type JWTService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewJWTService(secretKey string, ttl time.Duration) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
		revoked:   make(map[string]time.Time),
	}
}

// GenerateToken creates a signed token for userID
func (s *JWTService) GenerateToken(userID string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// ValidateToken parses the token and rejects expired or revoked ones
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Revoke blocks the token until it would have expired anyway
func (s *JWTService) Revoke(claims *Claims) {
	if claims == nil || claims.ID == "" {
		return
	}
	expires := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	s.revoked[claims.ID] = expires
	s.mu.Unlock()
}

// PruneRevoked forgets revocations of tokens that have since expired
func (s *JWTService) PruneRevoked(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
			n++
		}
	}
	return n
}
