package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bakehouse-pos/api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

// ErrSeedPINRequired is returned when an owner username is given without a PIN.
var ErrSeedPINRequired = errors.New("owner PIN is required with a username")

// SeedOptions lists the locations and the owner login to create.
type SeedOptions struct {
	Locations []string
	Username  string
	PIN       string
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
}

// SeedResult reports what Seed created and what was already there.
type SeedResult struct {
	Created      []string
	Existing     []string
	OwnerCreated bool
	OwnerExisted bool
}

// Seed ensures the system tabs, registers each location and, when Username
// is set, creates an OWNER login with a bcrypt hash of PIN. Existing
// locations and logins are left untouched.
func (s *Store) Seed(ctx context.Context, opts SeedOptions) (SeedResult, error) {
	var res SeedResult
	username := strings.TrimSpace(opts.Username)
	if username != "" && opts.PIN == "" {
		return res, ErrSeedPINRequired
	}
	if err := s.EnsureSystemTabs(ctx); err != nil {
		return res, fmt.Errorf("seed: %w", err)
	}

	for _, raw := range opts.Locations {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		id, err := NormalizeLocationID(raw)
		if err != nil {
			return res, fmt.Errorf("seed location %q: %w", raw, err)
		}
		switch err := s.CreateLocation(ctx, Location{ID: id}); {
		case errors.Is(err, ErrLocationExists):
			res.Existing = append(res.Existing, id)
		case err != nil:
			return res, fmt.Errorf("seed location %s: %w", id, err)
		default:
			res.Created = append(res.Created, id)
		}
	}

	if username == "" {
		return res, nil
	}
	cost := opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.PIN), cost)
	if err != nil {
		return res, fmt.Errorf("hash pin: %w", err)
	}
	err = s.CreateStaff(ctx, Staff{Username: username, PinHash: string(hash), Role: enum.RoleOwner})
	switch {
	case errors.Is(err, ErrStaffExists):
		res.OwnerExisted = true
	case err != nil:
		return res, fmt.Errorf("seed owner: %w", err)
	default:
		res.OwnerCreated = true
	}
	return res, nil
}
