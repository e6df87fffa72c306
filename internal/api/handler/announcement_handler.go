package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

// AnnouncementHandler serves admin management of platform-wide notices.
// The public active list lives on AppHandler.
type AnnouncementHandler struct {
	announcementService ports.AnnouncementService
}

func NewAnnouncementHandler(announcementService ports.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

type announcementRequest struct {
	Title   string `json:"title"   validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"required"`
}

// Publish creates an active platform-wide notice.
//
// @Summary      Publish an announcement
// @Tags         announcements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      announcementRequest  true  "Title and content"
// @Success      201   {object}  domain.Announcement
// @Failure      403   {object}  errorResponse
// @Router       /dashboard/announcements [post]
func (h *AnnouncementHandler) Publish(c echo.Context) error {
	var req announcementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	item, err := h.announcementService.Publish(c.Request().Context(), req.Title, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// Retire deactivates a notice. Retired notices disappear from the public
// list but stay on record.
//
// @Summary      Retire an announcement
// @Tags         announcements
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Announcement id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /dashboard/announcements/{id} [delete]
func (h *AnnouncementHandler) Retire(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.announcementService.Retire(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
