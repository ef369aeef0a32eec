package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/you/campusauth/domain"
)

// EnsureSuperAdmin creates the platform operator account unless an
// identity with that email already exists. It reports whether it created one.
func EnsureSuperAdmin(ctx context.Context, identities domain.IdentityRepository, passwords domain.PasswordService, email, password, name string) (*domain.Identity, bool, error) {
	email = domain.NormalizeEmail(email)
	if _, err := domain.EmailDomain(email); err != nil {
		return nil, false, err
	}
	if password == "" {
		return nil, false, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}

	existing, err := identities.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role() != domain.RoleSuperAdmin {
			return nil, false, fmt.Errorf("%s already belongs to a %s", email, existing.Role())
		}
		return existing, false, nil
	case !errors.Is(err, domain.ErrIdentityNotFound):
		return nil, false, err
	}

	hash, err := passwords.Hash(password)
	if err != nil {
		return nil, false, err
	}
	if name == "" {
		name = "Super Admin"
	}
	identity := &domain.Identity{
		Email:   email,
		Name:    name,
		Profile: domain.SuperAdminProfile{PasswordHash: hash},
	}
	if err := identities.Create(ctx, identity); err != nil {
		if errors.Is(err, domain.ErrIdentityExists) {
			existing, err := identities.FindByEmail(ctx, email)
			return existing, false, err
		}
		return nil, false, err
	}
	return identity, true, nil
}
