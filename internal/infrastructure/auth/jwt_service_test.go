package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/campusauth/domain"
)

func testStudent() *domain.Identity {
	return &domain.Identity{
		ID:           "user-1",
		Email:        "alice@lpu.in",
		TokenVersion: 3,
		Profile:      domain.StudentProfile{TenantID: "tenant-1"},
	}
}

func TestJWTService_MintAndValidate(t *testing.T) {
	svc, err := NewJWTService(map[string]string{"k1": "secret-1"}, "k1", "campusauth")
	require.NoError(t, err)

	token, err := svc.Mint(testStudent(), time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.IdentityID)
	assert.Equal(t, "alice@lpu.in", claims.Email)
	assert.Equal(t, domain.RoleStudent, claims.Role)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, "k1", claims.KeyID)
	assert.Equal(t, claims.IssuedAt+3600, claims.ExpiresAt)
}

func TestJWTService_SuperAdminHasNoTenantClaim(t *testing.T) {
	svc, err := NewJWTService(map[string]string{"k1": "secret-1"}, "k1", "campusauth")
	require.NoError(t, err)

	token, err := svc.Mint(&domain.Identity{ID: "root", Profile: domain.SuperAdminProfile{}}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, claims.Role)
	assert.Empty(t, claims.TenantID)
}

func TestJWTService_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, err := NewJWTService(map[string]string{"k1": "secret-1"}, "k1", "campusauth")
	require.NoError(t, err)
	svc.WithClock(func() time.Time { return now })

	token, err := svc.Mint(testStudent(), 7*24*time.Hour)
	require.NoError(t, err)

	now = now.Add(7*24*time.Hour + time.Second)
	_, err = svc.Validate(token)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}

func TestJWTService_KeyRotation(t *testing.T) {
	oldSvc, err := NewJWTService(map[string]string{"2024": "old-secret"}, "2024", "campusauth")
	require.NoError(t, err)
	oldToken, err := oldSvc.Mint(testStudent(), time.Hour)
	require.NoError(t, err)

	rotated, err := NewJWTService(map[string]string{"2024": "old-secret", "2025": "new-secret"}, "2025", "campusauth")
	require.NoError(t, err)

	claims, err := rotated.Validate(oldToken)
	require.NoError(t, err, "tokens signed with a retired-but-present key stay valid")
	assert.Equal(t, "2024", claims.KeyID)

	newToken, err := rotated.Mint(testStudent(), time.Hour)
	require.NoError(t, err)
	claims, err = rotated.Validate(newToken)
	require.NoError(t, err)
	assert.Equal(t, "2025", claims.KeyID)

	dropped, err := NewJWTService(map[string]string{"2025": "new-secret"}, "2025", "campusauth")
	require.NoError(t, err)
	_, err = dropped.Validate(oldToken)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}

func TestJWTService_Rejections(t *testing.T) {
	svc, err := NewJWTService(map[string]string{"k1": "secret-1"}, "k1", "campusauth")
	require.NoError(t, err)
	valid, err := svc.Mint(testStudent(), time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewJWTService(map[string]string{"k1": "secret-1"}, "k1", "someone-else")
	require.NoError(t, err)
	foreign, err := otherIssuer.Mint(testStudent(), time.Hour)
	require.NoError(t, err)

	noKid := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "campusauth",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noKidToken, err := noKid.SignedString([]byte("secret-1"))
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "tampered signature", token: tampered},
		{name: "wrong issuer", token: foreign},
		{name: "missing kid", token: noKidToken},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.True(t, errors.Is(err, domain.ErrTokenInvalid), "got %v", err)
		})
	}
}

func TestNewJWTService_Errors(t *testing.T) {
	_, err := NewJWTService(nil, "k1", "x")
	assert.Error(t, err)

	_, err = NewJWTService(map[string]string{"k1": "s"}, "k2", "x")
	assert.Error(t, err)

	_, err = NewJWTService(map[string]string{"k1": ""}, "k1", "x")
	assert.Error(t, err)
}
