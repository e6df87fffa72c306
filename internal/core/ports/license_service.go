package ports

import (
	"context"
	"time"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
)

// CreateLicensesInput carries the parameters of a batch create. Every key
// in the batch shares the same duration and notes.
type CreateLicensesInput struct {
	DeveloperID   int64
	ProjectID     int64
	Quantity      int
	DurationValue int
	DurationUnit  string
	Notes         string
}

// ActivateLicenseInput identifies a key to activate through the public API.
type ActivateLicenseInput struct {
	AppID    string
	Key      string
	Source   string
	ClientIP string
}

// ActivateLicenseResult is returned on successful activation.
type ActivateLicenseResult struct {
	DurationMinutes int
	ExpiryTime      time.Time
	ProjectName     string
}

// OwnedKeyInput identifies a key through the public API together with the
// owner's credential; used by every guarded per-key operation.
type OwnedKeyInput struct {
	AppID string
	DevID string
	Key   string
}

// LicenseDetail is the full key view with resolved status.
type LicenseDetail struct {
	License     *domain.LicenseKey
	Status      domain.LicenseStatus
	ProjectName string
}

// EditLicenseInput carries an owner edit of a single key.
type EditLicenseInput struct {
	DeveloperID   int64
	LicenseID     int64
	DurationValue int
	DurationUnit  string
	Notes         string
	IsActive      bool
	IsBanned      bool
}

// Batch dashboard actions over selected keys.
const (
	BatchActivate   = "activate"
	BatchDeactivate = "deactivate"
	BatchBan        = "ban"
	BatchUnban      = "unban"
	BatchDelete     = "delete"
)

// LicenseService owns the license-key lifecycle state machine.
type LicenseService interface {
	// CreateBatch generates Quantity fresh keys for the project, retrying
	// bounded times on key collision.
	CreateBatch(ctx context.Context, input CreateLicensesInput) ([]*domain.LicenseKey, error)

	// Activate performs the one-time activation, race-free under
	// concurrent attempts on the same key.
	Activate(ctx context.Context, input ActivateLicenseInput) (*ActivateLicenseResult, error)

	// Status resolves the reported status of a key, applying the lazy
	// expiry check before reporting. No owner credential is required; the
	// caller is the installed app holding the key.
	Status(ctx context.Context, appID, key string) (domain.LicenseStatus, error)

	// Detail returns the full key view for the owner.
	Detail(ctx context.Context, input OwnedKeyInput) (*LicenseDetail, error)

	// Guarded per-key transitions addressed by (app_id, dev_id, key).
	Deactivate(ctx context.Context, input OwnedKeyInput) (*domain.LicenseKey, error)
	Disable(ctx context.Context, input OwnedKeyInput) error
	Enable(ctx context.Context, input OwnedKeyInput) error
	Ban(ctx context.Context, input OwnedKeyInput) error
	Unban(ctx context.Context, input OwnedKeyInput) error
	Delete(ctx context.Context, input OwnedKeyInput) error

	// Dashboard operations addressed by key id, scoped to the developer.
	List(ctx context.Context, developerID, projectID int64) ([]LicenseDetail, error)
	Edit(ctx context.Context, input EditLicenseInput) (*domain.LicenseKey, error)
	ManualActivate(ctx context.Context, developerID, licenseID int64) (*domain.LicenseKey, error)
	ManualDeactivate(ctx context.Context, developerID, licenseID int64) error
	ToggleActive(ctx context.Context, developerID, licenseID int64) (*domain.LicenseKey, error)
	BatchAction(ctx context.Context, developerID int64, action string, ids []int64) (int, error)
}
