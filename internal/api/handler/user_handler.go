package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

// UserHandler serves end-user account endpoints on the public API, plus
// the dashboard user listing.
type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register creates an end-user account scoped to one project.
//
// @Summary      Register a project user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerUserRequest  true  "Registration details"
// @Success      201   {object}  domain.ProjectUser
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/api/user/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.userService.Register(c.Request().Context(), ports.RegisterUserInput{
		AppID:    req.AppID,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Login authenticates a project user by username or email.
//
// @Summary      Project user login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      userLoginRequest  true  "Login credentials"
// @Success      200   {object}  domain.ProjectUser
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/api/user/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req userLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.userService.Login(c.Request().Context(), ports.UserLoginInput{
		AppID:    req.AppID,
		Login:    req.Login,
		Password: req.Password,
		ClientIP: c.RealIP(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// CheckRegistration reports whether any supplied identifier matches a
// user of the project. No owner credential is required.
//
// @Summary      Check whether a project user exists
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      userLookupRequest  true  "App id and identifiers"
// @Success      200   {object}  registrationStateResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/api/user/check-registration [post]
func (h *UserHandler) CheckRegistration(c echo.Context) error {
	var req userLookupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	state, err := h.userService.CheckRegistration(c.Request().Context(), req.AppID, req.identifier())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, registrationStateResponse{State: string(state)})
}

// Detail returns one project user's record to the owner.
//
// @Summary      Fetch a project user's record
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      userLookupRequest  true  "App id, dev id and identifiers"
// @Success      200   {object}  domain.ProjectUser
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/api/user/alldata [post]
func (h *UserHandler) Detail(c echo.Context) error {
	req, err := bindGuardedUser(c)
	if err != nil {
		return err
	}

	user, err := h.userService.Get(c.Request().Context(), req.toGuarded())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Ban blocks a project user. Login refuses banned accounts even with
// valid credentials.
//
// @Summary      Ban a project user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      userLookupRequest  true  "App id, dev id and identifiers"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/api/user/ban [post]
func (h *UserHandler) Ban(c echo.Context) error {
	return h.userAction(c, h.userService.Ban, "user banned")
}

// Unban lifts a project user's ban.
//
// @Summary      Unban a project user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      userLookupRequest  true  "App id, dev id and identifiers"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/api/user/unban [post]
func (h *UserHandler) Unban(c echo.Context) error {
	return h.userAction(c, h.userService.Unban, "user unbanned")
}

// Delete removes a project user permanently.
//
// @Summary      Delete a project user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      userLookupRequest  true  "App id, dev id and identifiers"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/api/user/delete [post]
func (h *UserHandler) Delete(c echo.Context) error {
	return h.userAction(c, h.userService.Delete, "user deleted")
}

// SendResetEmail issues a reset token to the user's address. The token is
// valid for one hour.
//
// @Summary      Send a password reset email to a project user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      userLookupRequest  true  "App id, dev id and identifiers"
// @Success      202   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/api/user/send-reset-email [post]
func (h *UserHandler) SendResetEmail(c echo.Context) error {
	req, err := bindGuardedUser(c)
	if err != nil {
		return err
	}
	if err := h.userService.SendResetEmail(c.Request().Context(), req.toGuarded()); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "reset email sent"})
}

// ResetPassword consumes a mailed reset token and sets the user's new
// password. Tokens are single-use and expire one hour after issue.
//
// @Summary      Reset a project user's password with a mailed token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      userResetPasswordRequest  true  "Token and new password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/api/user/reset-password [post]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	var req userResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.userService.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

// List returns all users of one owned project for the dashboard.
//
// @Summary      List a project's users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        project_id  query    int  true  "Project id"
// @Success      200         {array}  domain.ProjectUser
// @Failure      404         {object} errorResponse
// @Router       /dashboard/users [get]
func (h *UserHandler) List(c echo.Context) error {
	developerID, err := ctxDeveloperID(c)
	if err != nil {
		return err
	}

	projectID, err := strconv.ParseInt(c.QueryParam("project_id"), 10, 64)
	if err != nil || projectID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid project_id")
	}

	users, err := h.userService.List(c.Request().Context(), developerID, projectID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// userAction runs one guarded user transition sharing the bind, validate
// and response plumbing.
func (h *UserHandler) userAction(
	c echo.Context,
	action func(ctx context.Context, input ports.GuardedUserInput) error,
	message string,
) error {
	req, err := bindGuardedUser(c)
	if err != nil {
		return err
	}
	if err := action(c.Request().Context(), req.toGuarded()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: message})
}

func bindGuardedUser(c echo.Context) (userLookupRequest, error) {
	var req userLookupRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if req.DevID == "" {
		return req, echo.NewHTTPError(http.StatusUnauthorized, "dev_id is required")
	}
	return req, nil
}
