package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

const resetCodeTTL = 30 * time.Minute

// AuthService implements developer registration, login, email
// verification, password reset, and dev_id rotation.
type AuthService struct {
	developers ports.DeveloperRepository
	mailer     ports.Mailer
	jwtSecret  string
	tokenTTL   time.Duration
	log        zerolog.Logger
}

func NewAuthService(
	developers ports.DeveloperRepository,
	mailer ports.Mailer,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		developers: developers,
		mailer:     mailer,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		log:        log,
	}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterDeveloperInput) (*domain.Developer, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	dev := &domain.Developer{
		DevID:        uuid.NewString(),
		UID:          domain.NewUID(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.developers.Create(ctx, dev)
	if err != nil {
		return nil, err
	}

	s.sendVerificationEmail(ctx, created)
	s.log.Info().Str("username", created.Username).Str("uid", created.UID).Msg("developer registered")
	return created, nil
}

// Login authenticates by username, or by email when the login contains '@'.
func (s *AuthService) Login(ctx context.Context, login, password string) (string, *domain.Developer, error) {
	if login == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	var dev *domain.Developer
	var err error
	if strings.Contains(login, "@") {
		dev, err = s.developers.FindByEmail(ctx, login)
	} else {
		dev, err = s.developers.FindByUsername(ctx, login)
	}
	if err != nil {
		if err == domain.ErrDeveloperNotFound {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(dev.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !dev.EmailVerified {
		return "", nil, domain.ErrEmailNotVerified
	}

	now := time.Now().UTC()
	if err := s.developers.TouchLastLogin(ctx, dev.ID, now); err != nil {
		s.log.Warn().Err(err).Int64("developer_id", dev.ID).Msg("failed to record last login")
	}

	token, err := s.generateToken(dev)
	if err != nil {
		return "", nil, err
	}
	return token, dev, nil
}

// VerifyEmail marks the account verified. The verification token mailed at
// registration is the account's dev_id.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	dev, err := s.developers.FindByDevID(ctx, token)
	if err != nil {
		return err
	}
	if dev.EmailVerified {
		return nil
	}
	return s.developers.SetEmailVerified(ctx, dev.ID)
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	dev, err := s.developers.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	code := domain.NewResetCode()
	expires := time.Now().UTC().Add(resetCodeTTL)
	if err := s.developers.SetResetCode(ctx, dev.ID, code, expires); err != nil {
		return err
	}

	if s.mailer != nil {
		body := fmt.Sprintf("<p>Your password reset code is <b>%s</b>. It expires in 30 minutes.</p>", code)
		if err := s.mailer.Send(ctx, dev.Email, "Password reset code", body); err != nil {
			s.log.Error().Err(err).Str("email", dev.Email).Msg("failed to send reset code email")
			return err
		}
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if newPassword == "" {
		return domain.ErrInvalidCredentials
	}
	dev, err := s.developers.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !dev.ResetCodeValid(code, time.Now().UTC()) {
		return domain.ErrResetCodeInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.developers.UpdatePassword(ctx, dev.ID, string(hash)); err != nil {
		return err
	}
	return s.developers.ClearResetCode(ctx, dev.ID)
}

func (s *AuthService) ChangePassword(ctx context.Context, developerID int64, current, newPassword string) error {
	if newPassword == "" {
		return domain.ErrInvalidCredentials
	}
	dev, err := s.developers.FindByID(ctx, developerID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(dev.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.developers.UpdatePassword(ctx, dev.ID, string(hash))
}

// RotateDevID replaces the developer credential. Keys issued against the
// old dev_id simply stop authorizing; project data is untouched.
func (s *AuthService) RotateDevID(ctx context.Context, developerID int64) (string, error) {
	dev, err := s.developers.FindByID(ctx, developerID)
	if err != nil {
		return "", err
	}
	devID := uuid.NewString()
	if err := s.developers.RotateDevID(ctx, dev.ID, devID); err != nil {
		return "", err
	}
	s.log.Info().Int64("developer_id", dev.ID).Msg("dev_id rotated")
	return devID, nil
}

func (s *AuthService) generateToken(dev *domain.Developer) (string, error) {
	claims := jwt.MapClaims{
		"sub":      dev.ID,
		"username": dev.Username,
		"dev_id":   dev.DevID,
		"role":     dev.Role(),
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, dev *domain.Developer) {
	if s.mailer == nil {
		return
	}
	body := fmt.Sprintf("<p>Welcome, %s. Confirm your email with token <b>%s</b>.</p>", dev.Username, dev.DevID)
	if err := s.mailer.Send(ctx, dev.Email, "Verify your email", body); err != nil {
		s.log.Error().Err(err).Str("email", dev.Email).Msg("failed to send verification email")
	}
}
