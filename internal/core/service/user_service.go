package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

const resetTokenTTL = time.Hour

// UserService implements end-user accounts scoped to projects.
type UserService struct {
	users    ports.ProjectUserRepository
	projects ports.ProjectRepository
	guard    *OwnerGuard
	mailer   ports.Mailer
	log      zerolog.Logger
}

func NewUserService(
	users ports.ProjectUserRepository,
	projects ports.ProjectRepository,
	guard *OwnerGuard,
	mailer ports.Mailer,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		projects: projects,
		guard:    guard,
		mailer:   mailer,
		log:      log,
	}
}

func (s *UserService) Register(ctx context.Context, input ports.RegisterUserInput) (*domain.ProjectUser, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	project, err := s.projects.FindByAppID(ctx, input.AppID)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.ProjectUser{
		UID:          domain.NewNumericUID(),
		ProjectID:    project.ID,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Nickname:     input.Nickname,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("app_id", input.AppID).Str("uid", created.UID).Msg("project user registered")
	return created, nil
}

// Login authenticates an end-user by username, or email when the login
// contains '@'. Banned users are refused regardless of credentials.
func (s *UserService) Login(ctx context.Context, input ports.UserLoginInput) (*domain.ProjectUser, error) {
	if input.Login == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	project, err := s.projects.FindByAppID(ctx, input.AppID)
	if err != nil {
		return nil, err
	}

	ident := ports.UserIdentifier{Username: input.Login}
	if strings.Contains(input.Login, "@") {
		ident = ports.UserIdentifier{Email: input.Login}
	}
	user, err := s.users.FindByIdentifier(ctx, project.ID, ident)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if user.IsBanned {
		return nil, domain.ErrUserBanned
	}

	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now, input.ClientIP); err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to record user login")
	}
	user.LastLogin = &now
	user.LastLoginIP = input.ClientIP
	return user, nil
}

// CheckRegistration is the unguarded existence probe used by installed
// apps before showing a register or login form.
func (s *UserService) CheckRegistration(ctx context.Context, appID string, ident ports.UserIdentifier) (ports.RegistrationState, error) {
	if ident.Empty() {
		return "", domain.ErrMissingIdentifier
	}
	project, err := s.projects.FindByAppID(ctx, appID)
	if err != nil {
		return "", err
	}

	user, err := s.users.FindByIdentifier(ctx, project.ID, ident)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ports.RegistrationUnknown, nil
		}
		return "", err
	}
	if !user.IsActive {
		return ports.RegistrationUnverified, nil
	}
	return ports.RegistrationRegistered, nil
}

func (s *UserService) Get(ctx context.Context, input ports.GuardedUserInput) (*domain.ProjectUser, error) {
	_, user, err := s.resolveGuardedUser(ctx, input)
	return user, err
}

func (s *UserService) Ban(ctx context.Context, input ports.GuardedUserInput) error {
	_, user, err := s.resolveGuardedUser(ctx, input)
	if err != nil {
		return err
	}
	return s.users.SetBanned(ctx, user.ID, true)
}

func (s *UserService) Unban(ctx context.Context, input ports.GuardedUserInput) error {
	_, user, err := s.resolveGuardedUser(ctx, input)
	if err != nil {
		return err
	}
	return s.users.SetBanned(ctx, user.ID, false)
}

func (s *UserService) Delete(ctx context.Context, input ports.GuardedUserInput) error {
	_, user, err := s.resolveGuardedUser(ctx, input)
	if err != nil {
		return err
	}
	return s.users.Delete(ctx, user.ID)
}

// SendResetEmail issues a fresh reset token and mails it to the user.
func (s *UserService) SendResetEmail(ctx context.Context, input ports.GuardedUserInput) error {
	project, user, err := s.resolveGuardedUser(ctx, input)
	if err != nil {
		return err
	}

	token := uuid.NewString()
	expires := time.Now().UTC().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return err
	}

	if s.mailer != nil {
		body := fmt.Sprintf("<p>A password reset was requested for your %s account. Your reset token is <b>%s</b>; it expires in 1 hour.</p>", project.Name, token)
		if err := s.mailer.Send(ctx, user.Email, "Password reset - "+project.Name, body); err != nil {
			s.log.Error().Err(err).Str("email", user.Email).Msg("failed to send user reset email")
			return err
		}
	}
	return nil
}

// ResetPassword consumes a mailed reset token and sets the new password.
// Holding the token proves identity, so no owner credential is required.
// An unknown token is indistinguishable from an expired one.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return domain.ErrInvalidInput
	}

	user, err := s.users.FindByResetToken(ctx, token)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrResetTokenInvalid
	}
	if err != nil {
		return err
	}
	if !user.ResetTokenValid(token, time.Now().UTC()) {
		return domain.ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	// UpdatePassword clears the reset token, making it single-use.
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", user.ID).Msg("project user password reset")
	return nil
}

func (s *UserService) List(ctx context.Context, developerID, projectID int64) ([]*domain.ProjectUser, error) {
	project, err := s.projects.FindForDeveloper(ctx, projectID, developerID)
	if err != nil {
		return nil, err
	}
	return s.users.ListForProject(ctx, project.ID)
}

func (s *UserService) resolveGuardedUser(ctx context.Context, input ports.GuardedUserInput) (*domain.Project, *domain.ProjectUser, error) {
	if input.Identifier.Empty() {
		return nil, nil, domain.ErrMissingIdentifier
	}
	project, err := s.guard.ResolveOwned(ctx, input.AppID, input.DevID)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.FindByIdentifier(ctx, project.ID, input.Identifier)
	if err != nil {
		return nil, nil, err
	}
	return project, user, nil
}
