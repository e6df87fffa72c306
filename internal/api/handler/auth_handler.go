package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

// AuthHandler serves developer account endpoints.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new developer account and mails a verification link.
//
// @Summary      Register a developer account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerDeveloperRequest  true  "Registration details"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerDeveloperRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	dev, err := h.authService.Register(c.Request().Context(), ports.RegisterDeveloperInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, tokenResponse{Developer: dev})
}

// Login authenticates a developer by username or email and returns a JWT.
//
// @Summary      Developer login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      developerLoginRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req developerLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	token, dev, err := h.authService.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenResponse{Token: token, Developer: dev})
}

// VerifyEmail marks the account matching the token as verified.
//
// @Summary      Verify a developer email address
// @Tags         auth
// @Produce      json
// @Param        token  path      string  true  "Verification token"
// @Success      200    {object}  messageResponse
// @Failure      404    {object}  errorResponse
// @Router       /auth/verify/{token} [get]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing verification token")
	}

	if err := h.authService.VerifyEmail(c.Request().Context(), token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "email verified"})
}

// RequestPasswordReset mails a 6-digit reset code to the account's email.
// The response is identical whether or not the address is registered.
//
// @Summary      Request a password reset code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      requestResetRequest  true  "Account email"
// @Success      202   {object}  messageResponse
// @Router       /auth/reset/request [post]
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req requestResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.authService.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "reset code sent if the account exists"})
}

// ResetPassword consumes a valid reset code and sets the new password.
//
// @Summary      Reset a password with a mailed code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Email, code and new password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/reset/confirm [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Email, req.Code, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

// ChangePassword updates the authenticated developer's password.
//
// @Summary      Change the current password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Router       /dashboard/developers/password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	developerID, err := ctxDeveloperID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.authService.ChangePassword(c.Request().Context(), developerID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

// RotateDevID replaces the developer credential. Existing clients holding
// the old dev_id stop authorizing immediately.
//
// @Summary      Rotate the developer credential
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  devIDResponse
// @Failure      401  {object}  errorResponse
// @Router       /dashboard/developers/reset-dev-id [post]
func (h *AuthHandler) RotateDevID(c echo.Context) error {
	developerID, err := ctxDeveloperID(c)
	if err != nil {
		return err
	}

	devID, err := h.authService.RotateDevID(c.Request().Context(), developerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, devIDResponse{DevID: devID})
}
