package domain

import (
	"errors"
	"time"
)

// LicenseStatus is the human-readable state of a license key. The wire
// vocabulary is fixed; external consumers match on these strings.
type LicenseStatus string

const (
	StatusAvailable LicenseStatus = "available"
	StatusActivated LicenseStatus = "activated"
	StatusExpired   LicenseStatus = "expired"
	StatusDisabled  LicenseStatus = "disabled"
	StatusBanned    LicenseStatus = "banned"
)

var ErrLicenseNotFound = errors.New("license key not found")
var ErrLicenseBanned = errors.New("license key is banned")
var ErrLicenseNotActive = errors.New("license key is not active")
var ErrLicenseUsed = errors.New("license key already activated")
var ErrLicenseExpired = errors.New("license key expired")
var ErrKeyCollision = errors.New("license key collision")
var ErrForbidden = errors.New("access forbidden")
var ErrInvalidInput = errors.New("invalid input")

// LicenseKey is an opaque activation credential bound to one project.
// ActivationTime and ExpiryTime are nil until the key is activated;
// deactivation clears both.
type LicenseKey struct {
	ID              int64      `json:"id"`
	Key             string     `json:"key"`
	ProjectID       int64      `json:"project_id"`
	DurationMinutes int        `json:"duration_minutes"`
	IsActive        bool       `json:"is_active"`
	IsBanned        bool       `json:"is_banned"`
	ActivationTime  *time.Time `json:"activation_time,omitempty"`
	ExpiryTime      *time.Time `json:"expiry_time,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CalculateExpiry derives the expiry from the activation time and duration.
// Returns nil when the key has never been activated.
func (k *LicenseKey) CalculateExpiry() *time.Time {
	if k.ActivationTime == nil || k.DurationMinutes <= 0 {
		return nil
	}
	t := k.ActivationTime.Add(time.Duration(k.DurationMinutes) * time.Minute)
	return &t
}

// IsExpiredAt reports whether the key's validity window has passed at now.
// A key with no expiry (never activated, or deactivated) is not expired.
func (k *LicenseKey) IsExpiredAt(now time.Time) bool {
	if k.ExpiryTime == nil {
		return false
	}
	return !now.Before(*k.ExpiryTime)
}

// Status resolves the reported status at now. Priority order:
// banned > disabled > expired > activated > available.
func (k *LicenseKey) Status(now time.Time) LicenseStatus {
	switch {
	case k.IsBanned:
		return StatusBanned
	case !k.IsActive && k.ActivationTime == nil:
		return StatusDisabled
	case k.ActivationTime != nil && k.IsExpiredAt(now):
		return StatusExpired
	case k.ActivationTime != nil:
		return StatusActivated
	default:
		return StatusAvailable
	}
}

// CanActivate checks the preconditions of the one-time activation
// transition and returns the typed rejection, or nil when activation may
// proceed. The persistence layer re-checks the same conditions atomically.
func (k *LicenseKey) CanActivate(now time.Time) error {
	switch {
	case k.IsBanned:
		return ErrLicenseBanned
	case !k.IsActive:
		return ErrLicenseNotActive
	case k.ActivationTime != nil && k.IsExpiredAt(now):
		return ErrLicenseExpired
	case k.ActivationTime != nil:
		return ErrLicenseUsed
	default:
		return nil
	}
}
