package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

// maxKeyRetries bounds regeneration attempts when a freshly generated key
// collides with an existing one.
const maxKeyRetries = 3

// LicenseService implements the license-key lifecycle state machine.
type LicenseService struct {
	licenses ports.LicenseRepository
	projects ports.ProjectRepository
	guard    *OwnerGuard
	audit    ports.AuditSink // optional; nil disables the audit trail
	log      zerolog.Logger
}

func NewLicenseService(
	licenses ports.LicenseRepository,
	projects ports.ProjectRepository,
	guard *OwnerGuard,
	audit ports.AuditSink,
	log zerolog.Logger,
) *LicenseService {
	return &LicenseService{
		licenses: licenses,
		projects: projects,
		guard:    guard,
		audit:    audit,
		log:      log,
	}
}

// CreateBatch generates input.Quantity fresh keys sharing one duration and
// notes. Key strings are regenerated and the insert retried when the
// store reports a collision.
func (s *LicenseService) CreateBatch(ctx context.Context, input ports.CreateLicensesInput) ([]*domain.LicenseKey, error) {
	project, err := s.projects.FindForDeveloper(ctx, input.ProjectID, input.DeveloperID)
	if err != nil {
		return nil, err
	}

	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}
	minutes := domain.DurationMinutes(input.DurationValue, input.DurationUnit)
	now := time.Now().UTC()

	keys := make([]*domain.LicenseKey, quantity)
	for i := range keys {
		keys[i] = &domain.LicenseKey{
			ProjectID:       project.ID,
			DurationMinutes: minutes,
			IsActive:        true,
			Notes:           input.Notes,
			CreatedAt:       now,
		}
	}

	for attempt := 0; ; attempt++ {
		for _, k := range keys {
			k.Key = domain.NewLicenseKeyString()
		}
		err = s.licenses.CreateBatch(ctx, keys)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrKeyCollision) || attempt+1 >= maxKeyRetries {
			s.log.Error().Err(err).Int64("project_id", project.ID).Msg("failed to create license batch")
			return nil, err
		}
		s.log.Warn().Int("attempt", attempt+1).Msg("license key collision, regenerating batch")
	}

	s.log.Info().
		Int("quantity", quantity).
		Int("duration_minutes", minutes).
		Int64("project_id", project.ID).
		Msg("license keys created")

	return keys, nil
}

// Activate performs the one-time activation transition. The store applies
// the state guard atomically, so two concurrent attempts on the same key
// yield exactly one success; the loser is classified from a re-read.
func (s *LicenseService) Activate(ctx context.Context, input ports.ActivateLicenseInput) (*ports.ActivateLicenseResult, error) {
	if input.AppID == "" || input.Key == "" {
		return nil, domain.ErrInvalidInput
	}

	project, err := s.projects.FindByAppID(ctx, input.AppID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	lic, err := s.licenses.FindByKey(ctx, project.ID, input.Key)
	if err != nil {
		if errors.Is(err, domain.ErrLicenseNotFound) {
			s.record(input, domain.OutcomeNotFound, now)
		}
		return nil, err
	}

	expiry, err := s.licenses.Activate(ctx, lic.ID, now)
	if err != nil {
		return nil, fmt.Errorf("activate license: %w", err)
	}
	if expiry == nil {
		// Conditional update matched no row: classify from current state.
		current, rerr := s.licenses.FindByKey(ctx, project.ID, input.Key)
		if rerr != nil {
			return nil, rerr
		}
		reason := current.CanActivate(now)
		if reason == nil {
			// The guard failed but the re-read looks activatable; treat as
			// a lost race with a concurrent winner.
			reason = domain.ErrLicenseUsed
		}
		s.record(input, rejectionOutcome(reason), now)
		return nil, reason
	}

	s.record(input, domain.OutcomeActivated, now)
	s.log.Info().
		Str("app_id", input.AppID).
		Str("key", input.Key).
		Time("expiry", *expiry).
		Msg("license key activated")

	return &ports.ActivateLicenseResult{
		DurationMinutes: lic.DurationMinutes,
		ExpiryTime:      *expiry,
		ProjectName:     project.Name,
	}, nil
}

// Status resolves the reported status of a key without an owner
// credential. Freshness: the expiry comparison uses the current clock,
// and an expired-but-still-active row is flipped off best-effort.
func (s *LicenseService) Status(ctx context.Context, appID, key string) (domain.LicenseStatus, error) {
	if appID == "" || key == "" {
		return "", domain.ErrInvalidInput
	}
	project, err := s.projects.FindByAppID(ctx, appID)
	if err != nil {
		return "", err
	}
	lic, err := s.licenses.FindByKey(ctx, project.ID, key)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	if lic.IsActive && lic.ActivationTime != nil && lic.IsExpiredAt(now) {
		if err := s.licenses.SetActive(ctx, lic.ID, false); err != nil {
			s.log.Warn().Err(err).Int64("license_id", lic.ID).Msg("failed to sweep expired key")
		}
	}
	return lic.Status(now), nil
}

// Detail returns the owner's full view of one key.
func (s *LicenseService) Detail(ctx context.Context, input ports.OwnedKeyInput) (*ports.LicenseDetail, error) {
	project, lic, err := s.resolveOwnedKey(ctx, input)
	if err != nil {
		return nil, err
	}
	return &ports.LicenseDetail{
		License:     lic,
		Status:      lic.Status(time.Now().UTC()),
		ProjectName: project.Name,
	}, nil
}

// Deactivate clears the activation, returning the key to Available.
// Idempotent: deactivating a never-activated key is a no-op.
func (s *LicenseService) Deactivate(ctx context.Context, input ports.OwnedKeyInput) (*domain.LicenseKey, error) {
	_, lic, err := s.resolveOwnedKey(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.licenses.Deactivate(ctx, lic.ID); err != nil {
		return nil, err
	}
	lic.ActivationTime = nil
	lic.ExpiryTime = nil
	return lic, nil
}

// Disable turns the administrative enable flag off.
func (s *LicenseService) Disable(ctx context.Context, input ports.OwnedKeyInput) error {
	_, lic, err := s.resolveOwnedKey(ctx, input)
	if err != nil {
		return err
	}
	return s.licenses.SetActive(ctx, lic.ID, false)
}

// Enable turns the enable flag back on. A banned key cannot be enabled.
func (s *LicenseService) Enable(ctx context.Context, input ports.OwnedKeyInput) error {
	_, lic, err := s.resolveOwnedKey(ctx, input)
	if err != nil {
		return err
	}
	if lic.IsBanned {
		return domain.ErrForbidden
	}
	return s.licenses.SetActive(ctx, lic.ID, true)
}

// Ban hard-blocks the key and forces it inactive.
func (s *LicenseService) Ban(ctx context.Context, input ports.OwnedKeyInput) error {
	_, lic, err := s.resolveOwnedKey(ctx, input)
	if err != nil {
		return err
	}
	return s.licenses.SetBanned(ctx, lic.ID, true)
}

// Unban clears the ban only; the key stays inactive until enabled.
func (s *LicenseService) Unban(ctx context.Context, input ports.OwnedKeyInput) error {
	_, lic, err := s.resolveOwnedKey(ctx, input)
	if err != nil {
		return err
	}
	return s.licenses.SetBanned(ctx, lic.ID, false)
}

// Delete removes the key permanently.
func (s *LicenseService) Delete(ctx context.Context, input ports.OwnedKeyInput) error {
	_, lic, err := s.resolveOwnedKey(ctx, input)
	if err != nil {
		return err
	}
	return s.licenses.Delete(ctx, lic.ID)
}

// List returns all keys of the developer (optionally one project),
// sweeping expired keys inactive first so the reported flags are fresh.
func (s *LicenseService) List(ctx context.Context, developerID, projectID int64) ([]ports.LicenseDetail, error) {
	now := time.Now().UTC()
	swept, err := s.licenses.SweepExpired(ctx, developerID, now)
	if err != nil {
		return nil, fmt.Errorf("sweep expired: %w", err)
	}
	if swept > 0 {
		s.log.Debug().Int64("count", swept).Int64("developer_id", developerID).Msg("expired keys swept")
	}

	keys, err := s.licenses.ListForDeveloper(ctx, developerID, projectID)
	if err != nil {
		return nil, err
	}
	details := make([]ports.LicenseDetail, 0, len(keys))
	for _, k := range keys {
		details = append(details, ports.LicenseDetail{License: k, Status: k.Status(now)})
	}
	return details, nil
}

// Edit updates duration, notes, and flags of an owned key. A banned key is
// forced inactive; an activated key that remains active gets its expiry
// recomputed from the (possibly new) duration.
func (s *LicenseService) Edit(ctx context.Context, input ports.EditLicenseInput) (*domain.LicenseKey, error) {
	lic, err := s.licenses.FindForDeveloper(ctx, input.LicenseID, input.DeveloperID)
	if err != nil {
		return nil, err
	}

	lic.DurationMinutes = domain.DurationMinutes(input.DurationValue, input.DurationUnit)
	lic.Notes = input.Notes
	lic.IsActive = input.IsActive
	lic.IsBanned = input.IsBanned
	if lic.IsBanned {
		lic.IsActive = false
	}
	if lic.ActivationTime != nil && lic.IsActive {
		lic.ExpiryTime = lic.CalculateExpiry()
	}

	if err := s.licenses.Update(ctx, lic); err != nil {
		return nil, err
	}
	return lic, nil
}

// ManualActivate starts the validity countdown by owner fiat, forcing the
// key active and unbanned like the dashboard batch-activate action.
func (s *LicenseService) ManualActivate(ctx context.Context, developerID, licenseID int64) (*domain.LicenseKey, error) {
	lic, err := s.licenses.FindForDeveloper(ctx, licenseID, developerID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	expiry, err := s.licenses.ForceActivate(ctx, lic.ID, now)
	if err != nil {
		return nil, err
	}
	lic.ActivationTime = &now
	lic.ExpiryTime = expiry
	lic.IsActive = true
	lic.IsBanned = false
	return lic, nil
}

// ManualDeactivate cancels an activation from the dashboard.
func (s *LicenseService) ManualDeactivate(ctx context.Context, developerID, licenseID int64) error {
	lic, err := s.licenses.FindForDeveloper(ctx, licenseID, developerID)
	if err != nil {
		return err
	}
	return s.licenses.Deactivate(ctx, lic.ID)
}

// ToggleActive flips the enable flag. Enabling a banned key is refused.
func (s *LicenseService) ToggleActive(ctx context.Context, developerID, licenseID int64) (*domain.LicenseKey, error) {
	lic, err := s.licenses.FindForDeveloper(ctx, licenseID, developerID)
	if err != nil {
		return nil, err
	}
	next := !lic.IsActive
	if next && lic.IsBanned {
		return nil, domain.ErrForbidden
	}
	if err := s.licenses.SetActive(ctx, lic.ID, next); err != nil {
		return nil, err
	}
	lic.IsActive = next
	return lic, nil
}

// BatchAction applies one dashboard action to the selected keys. Keys the
// developer does not own are skipped; the applied count is returned.
func (s *LicenseService) BatchAction(ctx context.Context, developerID int64, action string, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, domain.ErrInvalidInput
	}
	switch action {
	case ports.BatchActivate, ports.BatchDeactivate, ports.BatchBan, ports.BatchUnban, ports.BatchDelete:
	default:
		return 0, domain.ErrInvalidInput
	}

	applied := 0
	for _, id := range ids {
		lic, err := s.licenses.FindForDeveloper(ctx, id, developerID)
		if err != nil {
			if errors.Is(err, domain.ErrLicenseNotFound) {
				continue
			}
			return applied, err
		}

		switch action {
		case ports.BatchActivate:
			// Dashboard "activate" means enable + unban, not countdown start.
			if err = s.licenses.SetBanned(ctx, lic.ID, false); err == nil {
				err = s.licenses.SetActive(ctx, lic.ID, true)
			}
		case ports.BatchDeactivate:
			err = s.licenses.SetActive(ctx, lic.ID, false)
		case ports.BatchBan:
			err = s.licenses.SetBanned(ctx, lic.ID, true)
		case ports.BatchUnban:
			err = s.licenses.SetBanned(ctx, lic.ID, false)
		case ports.BatchDelete:
			err = s.licenses.Delete(ctx, lic.ID)
		}
		if err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// resolveOwnedKey runs the ownership guard and loads the addressed key.
func (s *LicenseService) resolveOwnedKey(ctx context.Context, input ports.OwnedKeyInput) (*domain.Project, *domain.LicenseKey, error) {
	if input.Key == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	project, err := s.guard.ResolveOwned(ctx, input.AppID, input.DevID)
	if err != nil {
		return nil, nil, err
	}
	lic, err := s.licenses.FindByKey(ctx, project.ID, input.Key)
	if err != nil {
		return nil, nil, err
	}
	return project, lic, nil
}

// record enqueues an activation-attempt event; the trail is best-effort.
func (s *LicenseService) record(input ports.ActivateLicenseInput, outcome string, ts time.Time) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(domain.ActivationEvent{
		Key:       input.Key,
		AppID:     input.AppID,
		Outcome:   outcome,
		Source:    input.Source,
		ClientIP:  input.ClientIP,
		Timestamp: ts,
	})
}

// rejectionOutcome maps a typed activation rejection to its audit outcome.
func rejectionOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrLicenseBanned):
		return domain.OutcomeRejectedBanned
	case errors.Is(err, domain.ErrLicenseNotActive):
		return domain.OutcomeRejectedDisabled
	case errors.Is(err, domain.ErrLicenseExpired):
		return domain.OutcomeRejectedExpired
	default:
		return domain.OutcomeRejectedUsed
	}
}
