package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, input ports.RegisterDeveloperInput) (*domain.Developer, error)
	loginFn    func(ctx context.Context, login, password string) (string, *domain.Developer, error)
	rotateFn   func(ctx context.Context, developerID int64) (string, error)
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterDeveloperInput) (*domain.Developer, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, login, password string) (string, *domain.Developer, error) {
	return s.loginFn(ctx, login, password)
}

func (s *stubAuthService) VerifyEmail(ctx context.Context, token string) error { return nil }

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) error { return nil }

func (s *stubAuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return nil
}

func (s *stubAuthService) ChangePassword(ctx context.Context, developerID int64, current, newPassword string) error {
	return nil
}

func (s *stubAuthService) RotateDevID(ctx context.Context, developerID int64) (string, error) {
	return s.rotateFn(ctx, developerID)
}

func newTestContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterDeveloperInput) (*domain.Developer, error) {
			if input.Username != "alice" || input.Email != "alice@example.com" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.Developer{ID: 1, Username: input.Username, Email: input.Email}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(e, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"s3cret-pass"}`)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	dev, ok := resp["developer"].(map[string]any)
	if !ok {
		t.Fatalf("expected developer in response")
	}
	if dev["username"] != "alice" {
		t.Fatalf("unexpected developer payload: %+v", dev)
	}
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(e, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"short"}`)

	err := handler.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestAuthHandler_Register_DuplicatePropagates(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterDeveloperInput) (*domain.Developer, error) {
			return nil, domain.ErrDeveloperExists
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(e, http.MethodPost, "/auth/register",
		`{"username":"bob","email":"bob@example.com","password":"s3cret-pass"}`)

	if err := handler.Register(c); !errors.Is(err, domain.ErrDeveloperExists) {
		t.Fatalf("expected ErrDeveloperExists, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, login, password string) (string, *domain.Developer, error) {
			if login != "alice" {
				t.Fatalf("unexpected login: %s", login)
			}
			return "signed-token", &domain.Developer{ID: 1, Username: "alice"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(e, http.MethodPost, "/auth/login",
		`{"login":"alice","password":"s3cret-pass"}`)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "signed-token" {
		t.Fatalf("expected token in response, got %+v", resp)
	}
}

func TestAuthHandler_Login_BadCredentialsPropagate(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, login, password string) (string, *domain.Developer, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(e, http.MethodPost, "/auth/login",
		`{"login":"alice","password":"wrong"}`)

	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_RotateDevID_RequiresClaims(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(e, http.MethodPost, "/dashboard/developers/reset-dev-id", "")

	err := handler.RotateDevID(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_RotateDevID_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		rotateFn: func(ctx context.Context, developerID int64) (string, error) {
			if developerID != 7 {
				t.Fatalf("unexpected developer id: %d", developerID)
			}
			return "new-credential", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(e, http.MethodPost, "/dashboard/developers/reset-dev-id", "")
	c.Set("developer_id", int64(7))

	if err := handler.RotateDevID(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["dev_id"] != "new-credential" {
		t.Fatalf("expected new credential, got %+v", resp)
	}
}
