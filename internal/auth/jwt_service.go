package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"stayledger/internal/access"
)

// DefaultTokenExpiry is the lifetime of tokens issued without an explicit TTL.
const DefaultTokenExpiry = time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrUnknownRole  = errors.New("unknown role")
)

// Claims represents JWT claims.
type Claims struct {
	Role access.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 access tokens.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Secret returns the signing key, for the echo-jwt middleware.
func (s *JWTService) Secret() []byte {
	return s.secret
}

// GenerateToken issues a token for subject acting as role. A zero ttl uses DefaultTokenExpiry.
func (s *JWTService) GenerateToken(subject string, role access.Role, ttl time.Duration) (string, error) {
	if !role.Valid() {
		return "", ErrUnknownRole
	}
	if ttl <= 0 {
		ttl = DefaultTokenExpiry
	}

	now := s.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return nil, ErrUnknownRole
	}
	return claims, nil
}

// ClaimsFromToken extracts Claims from a token parsed by the echo-jwt middleware.
func ClaimsFromToken(token *jwt.Token) (*Claims, error) {
	if token == nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
