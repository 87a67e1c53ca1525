package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
)

// Claims carried by access tokens. Subject is the user id.
type Claims struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 access tokens and mints opaque refresh tokens.
type JWTIssuer struct {
	key       []byte
	issuer    string
	audience  string
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTIssuer constructs an issuer for the given key and claims.
func NewJWTIssuer(key, issuer, audience string, accessTTL time.Duration) *JWTIssuer {
	return &JWTIssuer{key: []byte(key), issuer: issuer, audience: audience, accessTTL: accessTTL, now: time.Now}
}

// AccessToken signs a token for u that expires after the access TTL.
func (j *JWTIssuer) AccessToken(u *domain.User) (string, error) {
	now := j.now()
	claims := Claims{
		Email: u.Email,
		Name:  u.UserName,
		Roles: u.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID.String(),
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.key)
	if err != nil {
		return "", fmt.Errorf("op=auth.sign: %w", err)
	}
	return signed, nil
}

// RefreshToken returns 64 random bytes in standard base64.
func (j *JWTIssuer) RefreshToken() (string, error) {
	b := make([]byte, 64)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("op=auth.refresh: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Parse validates signature, issuer, audience and expiry. Any failure wraps
// domain.ErrUnauthorized.
func (j *JWTIssuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return j.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid claims", domain.ErrUnauthorized)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", domain.ErrUnauthorized)
	}
	return claims, nil
}
