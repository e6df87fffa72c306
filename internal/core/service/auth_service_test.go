package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub mailer
// ---------------------------------------------------------------------------

type sentMail struct {
	to      string
	subject string
	body    string
}

type stubMailer struct {
	sent    []sentMail
	sendErr error
}

func (m *stubMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const testJWTSecret = "test-secret"

func newAuthFixture() (*AuthService, *stubDeveloperRepo, *stubMailer) {
	devs := newStubDeveloperRepo()
	mailer := &stubMailer{}
	svc := NewAuthService(devs, mailer, testJWTSecret, time.Hour, discardLogger)
	return svc, devs, mailer
}

func registerVerified(t *testing.T, svc *AuthService, devs *stubDeveloperRepo, username, email, password string) *domain.Developer {
	t.Helper()
	dev, err := svc.Register(context.Background(), ports.RegisterDeveloperInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	if err := devs.SetEmailVerified(context.Background(), dev.ID); err != nil {
		t.Fatalf("verify %s: %v", username, err)
	}
	return dev
}

// ---------------------------------------------------------------------------
// Register tests
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	svc, _, mailer := newAuthFixture()

	dev, err := svc.Register(context.Background(), ports.RegisterDeveloperInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dev.DevID == "" {
		t.Error("dev_id must be generated")
	}
	if len(dev.UID) != 12 {
		t.Errorf("uid length: want 12, got %d (%q)", len(dev.UID), dev.UID)
	}
	if dev.PasswordHash == "s3cret" || dev.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(dev.PasswordHash), []byte("s3cret")) != nil {
		t.Error("stored hash must match the password")
	}
	if dev.EmailVerified {
		t.Error("fresh account must be unverified")
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 verification mail, got %d", len(mailer.sent))
	}
	if mailer.sent[0].to != "alice@example.com" {
		t.Errorf("mail recipient: want alice@example.com, got %q", mailer.sent[0].to)
	}
	if !strings.Contains(mailer.sent[0].body, dev.DevID) {
		t.Error("verification mail must carry the verification token")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newAuthFixture()

	input := ports.RegisterDeveloperInput{Username: "alice", Email: "alice@example.com", Password: "x"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), input)
	if !errors.Is(err, domain.ErrDeveloperExists) {
		t.Errorf("expected ErrDeveloperExists, got %v", err)
	}
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), ports.RegisterDeveloperInput{Username: "alice"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Register_MailFailureNotFatal(t *testing.T) {
	svc, _, mailer := newAuthFixture()
	mailer.sendErr = errors.New("smtp down")

	if _, err := svc.Register(context.Background(), ports.RegisterDeveloperInput{
		Username: "alice", Email: "alice@example.com", Password: "x",
	}); err != nil {
		t.Errorf("registration must succeed when the mailer fails, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Login tests
// ---------------------------------------------------------------------------

func TestAuthService_Login_ByUsername(t *testing.T) {
	svc, devs, _ := newAuthFixture()
	dev := registerVerified(t, svc, devs, "alice", "alice@example.com", "s3cret")

	token, got, err := svc.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != dev.ID {
		t.Errorf("developer id: want %d, got %d", dev.ID, got.ID)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token must verify with the signing secret: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["username"] != "alice" {
		t.Errorf("username claim: want alice, got %v", claims["username"])
	}
	if claims["dev_id"] != dev.DevID {
		t.Errorf("dev_id claim: want %q, got %v", dev.DevID, claims["dev_id"])
	}
	if claims["role"] != domain.RoleDeveloper {
		t.Errorf("role claim: want %q, got %v", domain.RoleDeveloper, claims["role"])
	}

	stored, _ := devs.FindByID(context.Background(), dev.ID)
	if stored.LastLogin == nil {
		t.Error("login must record last login time")
	}
}

func TestAuthService_Login_ByEmail(t *testing.T) {
	svc, devs, _ := newAuthFixture()
	registerVerified(t, svc, devs, "alice", "alice@example.com", "s3cret")

	if _, _, err := svc.Login(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Errorf("login by email failed: %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, devs, _ := newAuthFixture()
	registerVerified(t, svc, devs, "alice", "alice@example.com", "s3cret")

	_, _, err := svc.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUserSameError(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, _, err := svc.Login(context.Background(), "ghost", "whatever")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("unknown user must look like a credential failure, got %v", err)
	}
}

func TestAuthService_Login_UnverifiedEmailRefused(t *testing.T) {
	svc, _, _ := newAuthFixture()
	if _, err := svc.Register(context.Background(), ports.RegisterDeveloperInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cret",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, err := svc.Login(context.Background(), "alice", "s3cret")
	if !errors.Is(err, domain.ErrEmailNotVerified) {
		t.Errorf("expected ErrEmailNotVerified, got %v", err)
	}
}

func TestAuthService_Login_AdminRoleClaim(t *testing.T) {
	svc, devs, _ := newAuthFixture()
	dev := registerVerified(t, svc, devs, "root", "root@example.com", "s3cret")
	devs.byID[dev.ID].IsAdmin = true

	token, _, err := svc.Login(context.Background(), "root", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	parsed, _ := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	if claims := parsed.Claims.(jwt.MapClaims); claims["role"] != domain.RoleAdmin {
		t.Errorf("role claim: want %q, got %v", domain.RoleAdmin, claims["role"])
	}
}

// ---------------------------------------------------------------------------
// Email verification tests
// ---------------------------------------------------------------------------

func TestAuthService_VerifyEmail(t *testing.T) {
	svc, devs, _ := newAuthFixture()
	dev, err := svc.Register(context.Background(), ports.RegisterDeveloperInput{
		Username: "alice", Email: "alice@example.com", Password: "x",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.VerifyEmail(context.Background(), dev.DevID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := devs.FindByID(context.Background(), dev.ID)
	if !stored.EmailVerified {
		t.Error("account must be verified")
	}

	// Verifying twice is a no-op.
	if err := svc.VerifyEmail(context.Background(), dev.DevID); err != nil {
		t.Errorf("repeat verification must succeed, got %v", err)
	}
}

func TestAuthService_VerifyEmail_UnknownToken(t *testing.T) {
	svc, _, _ := newAuthFixture()

	err := svc.VerifyEmail(context.Background(), "bogus-token")
	if !errors.Is(err, domain.ErrDeveloperNotFound) {
		t.Errorf("expected ErrDeveloperNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Password reset tests
// ---------------------------------------------------------------------------

func TestAuthService_PasswordReset_Flow(t *testing.T) {
	svc, devs, mailer := newAuthFixture()
	dev := registerVerified(t, svc, devs, "alice", "alice@example.com", "oldpass")
	mailer.sent = nil

	if err := svc.RequestPasswordReset(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 reset mail, got %d", len(mailer.sent))
	}
	code := devs.byID[dev.ID].ResetCode
	if len(code) != 6 {
		t.Fatalf("reset code length: want 6, got %d (%q)", len(code), code)
	}
	if !strings.Contains(mailer.sent[0].body, code) {
		t.Error("reset mail must carry the code")
	}

	if err := svc.ResetPassword(context.Background(), "alice@example.com", code, "newpass"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "alice", "newpass"); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "alice", "oldpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("old password must stop working, got %v", err)
	}

	// The code is single-use.
	if err := svc.ResetPassword(context.Background(), "alice@example.com", code, "again"); !errors.Is(err, domain.ErrResetCodeInvalid) {
		t.Errorf("expected ErrResetCodeInvalid on reuse, got %v", err)
	}
}

func TestAuthService_ResetPassword_WrongCode(t *testing.T) {
	svc, devs, _ := newAuthFixture()
	registerVerified(t, svc, devs, "alice", "alice@example.com", "x")

	if err := svc.RequestPasswordReset(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	err := svc.ResetPassword(context.Background(), "alice@example.com", "000000", "newpass")
	if !errors.Is(err, domain.ErrResetCodeInvalid) {
		t.Errorf("expected ErrResetCodeInvalid, got %v", err)
	}
}

func TestAuthService_ResetPassword_ExpiredCode(t *testing.T) {
	svc, devs, _ := newAuthFixture()
	dev := registerVerified(t, svc, devs, "alice", "alice@example.com", "x")

	expired := time.Now().UTC().Add(-time.Minute)
	if err := devs.SetResetCode(context.Background(), dev.ID, "123456", expired); err != nil {
		t.Fatalf("seed code: %v", err)
	}
	err := svc.ResetPassword(context.Background(), "alice@example.com", "123456", "newpass")
	if !errors.Is(err, domain.ErrResetCodeInvalid) {
		t.Errorf("expected ErrResetCodeInvalid for expired code, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, devs, _ := newAuthFixture()
	dev := registerVerified(t, svc, devs, "alice", "alice@example.com", "oldpass")

	if err := svc.ChangePassword(context.Background(), dev.ID, "wrong", "newpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong current password, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), dev.ID, "oldpass", "newpass"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "alice", "newpass"); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Credential rotation tests
// ---------------------------------------------------------------------------

func TestAuthService_RotateDevID_OldCredentialStopsAuthorizing(t *testing.T) {
	svc, devs, _ := newAuthFixture()
	dev := registerVerified(t, svc, devs, "alice", "alice@example.com", "x")
	oldDevID := dev.DevID

	projects := newStubProjectRepo()
	project := &domain.Project{AppID: "app-0001", Name: "Demo", DeveloperID: dev.ID}
	if err := projects.Create(context.Background(), project); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	guard := NewOwnerGuard(projects, devs)

	if _, err := guard.ResolveOwned(context.Background(), "app-0001", oldDevID); err != nil {
		t.Fatalf("old credential must authorize before rotation: %v", err)
	}

	newDevID, err := svc.RotateDevID(context.Background(), dev.ID)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newDevID == oldDevID {
		t.Fatal("rotation must change the credential")
	}

	if _, err := guard.ResolveOwned(context.Background(), "app-0001", oldDevID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("old credential must stop authorizing, got %v", err)
	}
	if _, err := guard.ResolveOwned(context.Background(), "app-0001", newDevID); err != nil {
		t.Errorf("new credential must authorize, got %v", err)
	}
}
