package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/simplekeytime/licensing-system/internal/api/metrics"
	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

// AppHandler serves the public API consumed by installed applications.
// Callers authenticate with the project's app_id; mutating key operations
// additionally require the owner's dev_id.
type AppHandler struct {
	licenseService      ports.LicenseService
	projectService      ports.ProjectService
	announcementService ports.AnnouncementService
}

func NewAppHandler(
	licenseService ports.LicenseService,
	projectService ports.ProjectService,
	announcementService ports.AnnouncementService,
) *AppHandler {
	return &AppHandler{
		licenseService:      licenseService,
		projectService:      projectService,
		announcementService: announcementService,
	}
}

// Activate consumes a license key. The transition is race-free: exactly
// one caller wins under concurrent attempts on the same key.
//
// @Summary      Activate a license key
// @Tags         app
// @Accept       json
// @Produce      json
// @Param        body  body      activateLicenseRequest  true  "App id and key"
// @Success      200   {object}  activateLicenseResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/api/license/activate [post]
func (h *AppHandler) Activate(c echo.Context) error {
	var req activateLicenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	started := time.Now()
	result, err := h.licenseService.Activate(c.Request().Context(), ports.ActivateLicenseInput{
		AppID:    req.AppID,
		Key:      req.Key,
		Source:   req.Source,
		ClientIP: c.RealIP(),
	})
	metrics.ActivationDuration.Observe(time.Since(started).Seconds())
	metrics.ActivationsTotal.WithLabelValues(activationOutcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, activateLicenseResponse{
		Status:          string(domain.StatusActivated),
		DurationMinutes: result.DurationMinutes,
		ExpiryTime:      result.ExpiryTime,
		ProjectName:     result.ProjectName,
	})
}

// activationOutcome maps an activation error to the metric label
// vocabulary, which matches the audit-trail outcomes.
func activationOutcome(err error) string {
	switch {
	case err == nil:
		return domain.OutcomeActivated
	case errors.Is(err, domain.ErrLicenseUsed):
		return domain.OutcomeRejectedUsed
	case errors.Is(err, domain.ErrLicenseBanned):
		return domain.OutcomeRejectedBanned
	case errors.Is(err, domain.ErrLicenseNotActive):
		return domain.OutcomeRejectedDisabled
	case errors.Is(err, domain.ErrLicenseExpired):
		return domain.OutcomeRejectedExpired
	default:
		return domain.OutcomeNotFound
	}
}

// Status reports the current state of a key. No dev_id is required; the
// caller is the installed app holding the key.
//
// @Summary      Query a license key's status
// @Tags         app
// @Produce      json
// @Param        app_id  query     string  true  "Project app id"
// @Param        key     query     string  true  "License key"
// @Success      200     {object}  licenseStatusResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/api/license/status [get]
func (h *AppHandler) Status(c echo.Context) error {
	appID, key := c.QueryParam("app_id"), c.QueryParam("key")
	if appID == "" || key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "app_id and key are required")
	}

	status, err := h.licenseService.Status(c.Request().Context(), appID, key)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, licenseStatusResponse{Key: key, Status: string(status)})
}

// Detail returns the full key record to the owner.
//
// @Summary      Fetch a license key's full record
// @Tags         app
// @Accept       json
// @Produce      json
// @Param        body  body      ownedKeyRequest  true  "App id, dev id and key"
// @Success      200   {object}  licenseDetailResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/api/license/alldata [post]
func (h *AppHandler) Detail(c echo.Context) error {
	req, err := bindOwnedKey(c)
	if err != nil {
		return err
	}

	detail, err := h.licenseService.Detail(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLicenseDetail(*detail))
}

// Deactivate returns an activated key to the available pool.
//
// @Summary      Deactivate a license key
// @Tags         app
// @Accept       json
// @Produce      json
// @Param        body  body      ownedKeyRequest  true  "App id, dev id and key"
// @Success      200   {object}  licenseStatusResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/api/license/deactivate [post]
func (h *AppHandler) Deactivate(c echo.Context) error {
	req, err := bindOwnedKey(c)
	if err != nil {
		return err
	}

	key, err := h.licenseService.Deactivate(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, licenseStatusResponse{
		Key:    key.Key,
		Status: string(key.Status(time.Now().UTC())),
	})
}

// Disable turns a key off without consuming it.
//
// @Summary      Disable a license key
// @Tags         app
// @Accept       json
// @Produce      json
// @Param        body  body      ownedKeyRequest  true  "App id, dev id and key"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/api/license/disable [post]
func (h *AppHandler) Disable(c echo.Context) error {
	return h.keyAction(c, h.licenseService.Disable, "license key disabled")
}

// Enable turns a disabled key back on. Banned keys refuse.
//
// @Summary      Enable a license key
// @Tags         app
// @Accept       json
// @Produce      json
// @Param        body  body      ownedKeyRequest  true  "App id, dev id and key"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/api/license/enable [post]
func (h *AppHandler) Enable(c echo.Context) error {
	return h.keyAction(c, h.licenseService.Enable, "license key enabled")
}

// Ban blocks a key outright.
//
// @Summary      Ban a license key
// @Tags         app
// @Accept       json
// @Produce      json
// @Param        body  body      ownedKeyRequest  true  "App id, dev id and key"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/api/license/ban [post]
func (h *AppHandler) Ban(c echo.Context) error {
	return h.keyAction(c, h.licenseService.Ban, "license key banned")
}

// Unban lifts a ban. The key stays disabled until explicitly enabled.
//
// @Summary      Unban a license key
// @Tags         app
// @Accept       json
// @Produce      json
// @Param        body  body      ownedKeyRequest  true  "App id, dev id and key"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/api/license/unban [post]
func (h *AppHandler) Unban(c echo.Context) error {
	return h.keyAction(c, h.licenseService.Unban, "license key unbanned")
}

// Delete removes a key permanently.
//
// @Summary      Delete a license key
// @Tags         app
// @Accept       json
// @Produce      json
// @Param        body  body      ownedKeyRequest  true  "App id, dev id and key"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/api/license/delete [post]
func (h *AppHandler) Delete(c echo.Context) error {
	return h.keyAction(c, h.licenseService.Delete, "license key deleted")
}

// keyAction runs one guarded per-key transition sharing the bind,
// validate and response plumbing.
func (h *AppHandler) keyAction(
	c echo.Context,
	action func(ctx context.Context, input ports.OwnedKeyInput) error,
	message string,
) error {
	req, err := bindOwnedKey(c)
	if err != nil {
		return err
	}
	if err := action(c.Request().Context(), req.toInput()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: message})
}

func bindOwnedKey(c echo.Context) (ownedKeyRequest, error) {
	var req ownedKeyRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return req, nil
}

// UpdateInfo serves the project's public update metadata.
//
// @Summary      Fetch app update metadata
// @Tags         app
// @Produce      json
// @Param        app_id  query     string  true  "Project app id"
// @Success      200     {object}  updateInfoResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/api/app/info [get]
func (h *AppHandler) UpdateInfo(c echo.Context) error {
	info, err := h.updateInfo(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateInfoResponse{
		Name:          info.Name,
		CreatedAt:     info.CreatedAt,
		LatestVersion: info.LatestVersion,
		UpdateURL:     info.UpdateURL,
		UpdateNotice:  info.UpdateNotice,
		ForceUpdate:   info.ForceUpdate,
	})
}

// LatestVersion serves just the project's latest version string.
//
// @Summary      Fetch the latest app version
// @Tags         app
// @Produce      json
// @Param        app_id  query     string  true  "Project app id"
// @Success      200     {object}  map[string]string
// @Router       /v1/api/app/latest-version [get]
func (h *AppHandler) LatestVersion(c echo.Context) error {
	info, err := h.updateInfo(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"latest_version": info.LatestVersion})
}

// UpdateURL serves just the project's download URL.
//
// @Summary      Fetch the app download URL
// @Tags         app
// @Produce      json
// @Param        app_id  query     string  true  "Project app id"
// @Success      200     {object}  map[string]string
// @Router       /v1/api/app/update-url [get]
func (h *AppHandler) UpdateURL(c echo.Context) error {
	info, err := h.updateInfo(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"update_url": info.UpdateURL})
}

// UpdateNotice serves just the project's update announcement.
//
// @Summary      Fetch the app update notice
// @Tags         app
// @Produce      json
// @Param        app_id  query     string  true  "Project app id"
// @Success      200     {object}  map[string]string
// @Router       /v1/api/app/update-notice [get]
func (h *AppHandler) UpdateNotice(c echo.Context) error {
	info, err := h.updateInfo(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"update_notice": info.UpdateNotice})
}

// ForceUpdate serves just the project's force-update flag.
//
// @Summary      Fetch the app force-update flag
// @Tags         app
// @Produce      json
// @Param        app_id  query     string  true  "Project app id"
// @Success      200     {object}  map[string]bool
// @Router       /v1/api/app/if-force [get]
func (h *AppHandler) ForceUpdate(c echo.Context) error {
	info, err := h.updateInfo(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"force_update": info.ForceUpdate})
}

func (h *AppHandler) updateInfo(c echo.Context) (*ports.ProjectUpdateInfo, error) {
	appID := c.QueryParam("app_id")
	if appID == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "app_id is required")
	}
	return h.projectService.UpdateInfo(c.Request().Context(), appID)
}

// Announcements serves the active platform-wide notices.
//
// @Summary      List active platform announcements
// @Tags         app
// @Produce      json
// @Success      200  {array}  domain.Announcement
// @Router       /v1/api/announcements [get]
func (h *AppHandler) Announcements(c echo.Context) error {
	items, err := h.announcementService.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}
