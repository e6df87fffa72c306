package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/simplekeytime/licensing-system/internal/api/metrics"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

// LicenseHandler serves the JWT-protected license dashboard.
type LicenseHandler struct {
	licenseService ports.LicenseService
}

func NewLicenseHandler(licenseService ports.LicenseService) *LicenseHandler {
	return &LicenseHandler{licenseService: licenseService}
}

// CreateBatch generates a batch of fresh keys sharing one duration and notes.
//
// @Summary      Generate a batch of license keys
// @Tags         licenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createLicensesRequest  true  "Batch parameters"
// @Success      201   {array}   domain.LicenseKey
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /dashboard/licenses [post]
func (h *LicenseHandler) CreateBatch(c echo.Context) error {
	developerID, err := ctxDeveloperID(c)
	if err != nil {
		return err
	}

	var req createLicensesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	keys, err := h.licenseService.CreateBatch(c.Request().Context(), ports.CreateLicensesInput{
		DeveloperID:   developerID,
		ProjectID:     req.ProjectID,
		Quantity:      req.Quantity,
		DurationValue: req.DurationValue,
		DurationUnit:  req.DurationUnit,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}

	metrics.KeysCreatedTotal.Add(float64(len(keys)))
	return c.JSON(http.StatusCreated, keys)
}

// List returns the developer's keys with resolved statuses, expiring
// overdue keys first.
//
// @Summary      List license keys
// @Tags         licenses
// @Produce      json
// @Security     BearerAuth
// @Param        project_id  query     int  false  "Restrict to one project"
// @Success      200         {array}   licenseDetailResponse
// @Router       /dashboard/licenses [get]
func (h *LicenseHandler) List(c echo.Context) error {
	developerID, err := ctxDeveloperID(c)
	if err != nil {
		return err
	}

	var projectID int64
	if raw := c.QueryParam("project_id"); raw != "" {
		projectID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || projectID <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid project_id")
		}
	}

	details, err := h.licenseService.List(c.Request().Context(), developerID, projectID)
	if err != nil {
		return err
	}

	out := make([]licenseDetailResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toLicenseDetail(d))
	}
	return c.JSON(http.StatusOK, out)
}

// Edit updates duration, notes and flags of one owned key. When the key
// is activated and stays active the expiry is recomputed from the new
// duration.
//
// @Summary      Edit a license key
// @Tags         licenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "Key id"
// @Param        body  body      editLicenseRequest  true  "New key fields"
// @Success      200   {object}  domain.LicenseKey
// @Failure      404   {object}  errorResponse
// @Router       /dashboard/licenses/{id} [put]
func (h *LicenseHandler) Edit(c echo.Context) error {
	developerID, err := ctxDeveloperID(c)
	if err != nil {
		return err
	}
	licenseID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req editLicenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	key, err := h.licenseService.Edit(c.Request().Context(), ports.EditLicenseInput{
		DeveloperID:   developerID,
		LicenseID:     licenseID,
		DurationValue: req.DurationValue,
		DurationUnit:  req.DurationUnit,
		Notes:         req.Notes,
		IsActive:      req.IsActive,
		IsBanned:      req.IsBanned,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, key)
}

// ManualActivate starts the validity countdown of one key from the
// dashboard, bypassing the single-use check.
//
// @Summary      Manually activate a license key
// @Tags         licenses
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      int  true  "Key id"
// @Success      200  {object}  domain.LicenseKey
// @Failure      404  {object}  errorResponse
// @Router       /dashboard/licenses/{id}/activate [post]
func (h *LicenseHandler) ManualActivate(c echo.Context) error {
	developerID, err := ctxDeveloperID(c)
	if err != nil {
		return err
	}
	licenseID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	key, err := h.licenseService.ManualActivate(c.Request().Context(), developerID, licenseID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, key)
}

// ManualDeactivate returns one key to the available pool.
//
// @Summary      Manually deactivate a license key
// @Tags         licenses
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Key id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /dashboard/licenses/{id}/deactivate [post]
func (h *LicenseHandler) ManualDeactivate(c echo.Context) error {
	developerID, err := ctxDeveloperID(c)
	if err != nil {
		return err
	}
	licenseID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.licenseService.ManualDeactivate(c.Request().Context(), developerID, licenseID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleActive flips the enabled flag of one key. Banned keys refuse the
// toggle.
//
// @Summary      Toggle a license key's enabled flag
// @Tags         licenses
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      int  true  "Key id"
// @Success      200  {object}  domain.LicenseKey
// @Failure      403  {object}  errorResponse
// @Router       /dashboard/licenses/{id}/toggle [post]
func (h *LicenseHandler) ToggleActive(c echo.Context) error {
	developerID, err := ctxDeveloperID(c)
	if err != nil {
		return err
	}
	licenseID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	key, err := h.licenseService.ToggleActive(c.Request().Context(), developerID, licenseID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, key)
}

// BatchAction applies one action to a selection of owned keys. Keys the
// developer does not own are skipped, not failed.
//
// @Summary      Apply an action to multiple license keys
// @Tags         licenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      batchActionRequest  true  "Action and key ids"
// @Success      200   {object}  batchActionResponse
// @Failure      400   {object}  errorResponse
// @Router       /dashboard/licenses/batch [post]
func (h *LicenseHandler) BatchAction(c echo.Context) error {
	developerID, err := ctxDeveloperID(c)
	if err != nil {
		return err
	}

	var req batchActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	applied, err := h.licenseService.BatchAction(c.Request().Context(), developerID, req.Action, req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, batchActionResponse{Applied: applied})
}
