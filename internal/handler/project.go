package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/irkinnovations/portfolio/internal/domain"
)

// ProjectManager is the part of service.ProjectService used by ProjectHandler.
type ProjectManager interface {
	List(ctx context.Context) ([]domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, input domain.ProjectInput) (*domain.Project, error)
	Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// ProjectHandler handles project endpoints.
type ProjectHandler struct {
	projects ProjectManager
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects ProjectManager) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List returns every project, newest first.
func (h *ProjectHandler) List(c echo.Context) error {
	projects, err := h.projects.List(c.Request().Context())
	if err != nil {
		return err
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return c.JSON(http.StatusOK, projects)
}

// Get returns a single project.
func (h *ProjectHandler) Get(c echo.Context) error {
	p, err := h.projects.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create adds a project.
func (h *ProjectHandler) Create(c echo.Context) error {
	var input domain.ProjectInput
	if err := (&echo.DefaultBinder{}).BindBody(c, &input); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}

	p, err := h.projects.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update applies a partial update to a project.
func (h *ProjectHandler) Update(c echo.Context) error {
	var patch domain.ProjectPatch
	if err := (&echo.DefaultBinder{}).BindBody(c, &patch); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}

	p, err := h.projects.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a project.
func (h *ProjectHandler) Delete(c echo.Context) error {
	if err := h.projects.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Project removed"})
}
