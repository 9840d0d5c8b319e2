package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ticketgate/backend/internal/models"
)

type ProjectRequest struct {
	ClientName  string  `json:"client_name" validate:"required"`
	ServiceType string  `json:"service_type" validate:"required,oneof=LINE MEO"`
	Description *string `json:"description,omitempty"`
}

type UpdateProjectRequest struct {
	ClientName  *string `json:"client_name,omitempty" validate:"omitempty,min=1"`
	ServiceType *string `json:"service_type,omitempty" validate:"omitempty,oneof=LINE MEO"`
	Description *string `json:"description,omitempty"`
}

// @Summary List projects
// @Tags projects
// @Produce json
// @Success 200 {array} models.Project
// @Router /api/projects [get]
func (h *Handler) ProjectsList(c *gin.Context) {
	projects, err := h.Projects.ListProjects(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// @Summary Project details
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} models.Project
// @Router /api/projects/{id} [get]
func (h *Handler) ProjectDetails(c *gin.Context) {
	p, err := h.Projects.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Create project
// @Tags projects
// @Accept json
// @Produce json
// @Param request body ProjectRequest true "Project"
// @Success 201 {object} models.Project
// @Router /api/projects [post]
func (h *Handler) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	req.ClientName = strings.TrimSpace(req.ClientName)
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	p, err := h.Projects.CreateProject(c.Request.Context(), models.Project{
		ClientName:  req.ClientName,
		ServiceType: models.ServiceType(req.ServiceType),
		Description: req.Description,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary Update project
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body UpdateProjectRequest true "Fields to change"
// @Success 200 {object} models.Project
// @Router /api/projects/{id} [patch]
func (h *Handler) UpdateProject(c *gin.Context) {
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	patch := models.ProjectPatch{ClientName: req.ClientName, Description: req.Description}
	if req.ServiceType != nil {
		st := models.ServiceType(*req.ServiceType)
		patch.ServiceType = &st
	}
	p, err := h.Projects.UpdateProject(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete project and its tickets
// @Tags projects
// @Param id path string true "Project ID"
// @Success 204
// @Router /api/projects/{id} [delete]
func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.Projects.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
