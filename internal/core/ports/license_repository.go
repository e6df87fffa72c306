package ports

import (
	"context"
	"time"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
)

// LicenseRepository is the persistence boundary for license keys. The
// authoritative store must provide row-level conditional updates; Activate
// in particular is a single compare-and-set statement, never read-then-write.
type LicenseRepository interface {
	// CreateBatch inserts the given keys in one transaction. A unique-key
	// collision surfaces as domain.ErrKeyCollision so the caller can retry
	// with fresh key strings.
	CreateBatch(ctx context.Context, keys []*domain.LicenseKey) error

	// FindByKey resolves a key string within one project.
	FindByKey(ctx context.Context, projectID int64, key string) (*domain.LicenseKey, error)

	// FindForDeveloper resolves a key by id, constrained to projects owned
	// by the given developer. Returns domain.ErrLicenseNotFound when the id
	// is absent or owned by someone else.
	FindForDeveloper(ctx context.Context, id, developerID int64) (*domain.LicenseKey, error)

	// ListForDeveloper returns all keys across the developer's projects,
	// newest first. projectID narrows to one project when non-zero.
	ListForDeveloper(ctx context.Context, developerID, projectID int64) ([]*domain.LicenseKey, error)

	// Activate performs the one-time activation as an atomic conditional
	// update guarded on "activation_time IS NULL AND is_active AND NOT
	// is_banned". On success it returns the computed expiry. When the guard
	// fails it returns (nil, nil); the caller re-reads the row to classify
	// the rejection.
	Activate(ctx context.Context, id int64, now time.Time) (*time.Time, error)

	// ForceActivate is the administrative activation: it sets the
	// activation time unconditionally, recomputes expiry, and forces the
	// key active and unbanned.
	ForceActivate(ctx context.Context, id int64, now time.Time) (*time.Time, error)

	// Deactivate clears activation and expiry. Idempotent.
	Deactivate(ctx context.Context, id int64) error

	// SetActive toggles the administrative enable flag.
	SetActive(ctx context.Context, id int64, active bool) error

	// SetBanned sets or clears the ban. Banning forces the key inactive;
	// unbanning does not restore it.
	SetBanned(ctx context.Context, id int64, banned bool) error

	// Update persists duration, notes, flags, and expiry after an edit.
	Update(ctx context.Context, key *domain.LicenseKey) error

	// Delete removes the key permanently.
	Delete(ctx context.Context, id int64) error

	// SweepExpired flips is_active off for every key of the developer whose
	// expiry has passed. Returns the number of keys swept.
	SweepExpired(ctx context.Context, developerID int64, now time.Time) (int64, error)
}
