package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/you/campusauth/domain"
)

// sessionClaims is the wire form of a session token
type sessionClaims struct {
	Role         string `json:"role"`
	Email        string `json:"email,omitempty"`
	TenantID     string `json:"tid,omitempty"`
	TokenVersion int    `json:"tv"`
	jwt.RegisteredClaims
}

// JWTServiceImpl implements domain.TokenService with HS256 and a key ring.
// New tokens are signed with the active key; any key in the ring verifies.
type JWTServiceImpl struct {
	keys      map[string][]byte
	activeKID string
	issuer    string
	now       func() time.Time
}

// NewJWTService creates a new JWT service over the given kid -> secret ring
func NewJWTService(keys map[string]string, activeKID, issuer string) (*JWTServiceImpl, error) {
	if len(keys) == 0 {
		return nil, errors.New("jwt: empty key ring")
	}
	ring := make(map[string][]byte, len(keys))
	for kid, secret := range keys {
		if secret == "" {
			return nil, fmt.Errorf("jwt: key %q has an empty secret", kid)
		}
		ring[kid] = []byte(secret)
	}
	if _, ok := ring[activeKID]; !ok {
		return nil, fmt.Errorf("jwt: active key %q not in ring", activeKID)
	}
	return &JWTServiceImpl{
		keys:      ring,
		activeKID: activeKID,
		issuer:    issuer,
		now:       time.Now,
	}, nil
}

// WithClock replaces the time source; used by tests
func (j *JWTServiceImpl) WithClock(now func() time.Time) *JWTServiceImpl {
	j.now = now
	return j
}

// Mint implements domain.TokenService
func (j *JWTServiceImpl) Mint(identity *domain.Identity, ttl time.Duration) (string, error) {
	if identity == nil || identity.ID == "" {
		return "", errors.New("jwt: identity id required")
	}
	now := j.now()
	claims := sessionClaims{
		Role:         string(identity.Role()),
		Email:        identity.Email,
		TenantID:     identity.TenantID(),
		TokenVersion: identity.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = j.activeKID
	return token.SignedString(j.keys[j.activeKID])
}

// Validate implements domain.TokenService. Any failure is reported as
// domain.ErrTokenInvalid so callers cannot tell bad signatures from expiry.
func (j *JWTServiceImpl) Validate(tokenString string) (*domain.TokenClaims, error) {
	var kid string
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		k, ok := token.Header["kid"].(string)
		if !ok {
			return nil, domain.ErrUnknownKeyID
		}
		key, ok := j.keys[k]
		if !ok {
			return nil, domain.ErrUnknownKeyID
		}
		kid = k
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, domain.ErrTokenInvalid
	}

	out := &domain.TokenClaims{
		IdentityID:   claims.Subject,
		Email:        claims.Email,
		Role:         domain.Role(claims.Role),
		TenantID:     claims.TenantID,
		TokenVersion: claims.TokenVersion,
		KeyID:        kid,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return out, nil
}
