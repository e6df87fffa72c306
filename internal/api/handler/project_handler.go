package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

// ProjectHandler serves the dashboard project CRUD.
type ProjectHandler struct {
	projectService ports.ProjectService
}

func NewProjectHandler(projectService ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// Create registers a new project for the authenticated developer. The
// app_id credential is assigned server side.
//
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      projectRequest  true  "Project fields"
// @Success      201   {object}  domain.Project
// @Failure      400   {object}  errorResponse
// @Router       /dashboard/projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	developerID, err := ctxDeveloperID(c)
	if err != nil {
		return err
	}

	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	project, err := h.projectService.Create(c.Request().Context(), ports.CreateProjectInput{
		DeveloperID:   developerID,
		Name:          req.Name,
		Description:   req.Description,
		LatestVersion: req.LatestVersion,
		DownloadURL:   req.DownloadURL,
		Announcement:  req.Announcement,
		ForceUpdate:   req.ForceUpdate,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, project)
}

// List returns the authenticated developer's projects.
//
// @Summary      List owned projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Project
// @Router       /dashboard/projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	developerID, err := ctxDeveloperID(c)
	if err != nil {
		return err
	}

	projects, err := h.projectService.List(c.Request().Context(), developerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

// Update edits an owned project. The app_id is immutable.
//
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Project id"
// @Param        body  body      projectRequest  true  "Project fields"
// @Success      200   {object}  domain.Project
// @Failure      404   {object}  errorResponse
// @Router       /dashboard/projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	developerID, err := ctxDeveloperID(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	project, err := h.projectService.Update(c.Request().Context(), ports.UpdateProjectInput{
		DeveloperID:   developerID,
		ProjectID:     projectID,
		Name:          req.Name,
		Description:   req.Description,
		LatestVersion: req.LatestVersion,
		DownloadURL:   req.DownloadURL,
		Announcement:  req.Announcement,
		ForceUpdate:   req.ForceUpdate,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

// Delete removes an owned project. License keys and project users are
// removed with it.
//
// @Summary      Delete a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Project id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /dashboard/projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	developerID, err := ctxDeveloperID(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.projectService.Delete(c.Request().Context(), developerID, projectID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
