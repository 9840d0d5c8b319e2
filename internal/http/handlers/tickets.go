package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ticketgate/backend/internal/checklist"
	"github.com/ticketgate/backend/internal/models"
	"github.com/ticketgate/backend/internal/service"
)

type CreateTicketRequest struct {
	ProjectID string            `json:"project_id" validate:"required"`
	Title     string            `json:"title" validate:"required"`
	Content   string            `json:"content" validate:"required"`
	Category  string            `json:"category" validate:"required"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	// Draft stores the ticket without review.
	Draft bool `json:"draft"`
}

type UpdateTicketRequest struct {
	Title    *string           `json:"title,omitempty"`
	Content  *string           `json:"content,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft reviewing approved done"`
}

// @Summary List tickets
// @Description Tickets visible to the caller's role, newest first
// @Tags tickets
// @Produce json
// @Param project_id query string false "Project ID"
// @Success 200 {array} models.Ticket
// @Router /api/tickets [get]
func (h *Handler) TicketsList(c *gin.Context) {
	actor, _ := actorFrom(c)
	tickets, err := h.Tickets.List(c.Request.Context(), actor.Role, c.Query("project_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// @Summary Ticket counts per status
// @Tags tickets
// @Produce json
// @Success 200 {object} models.TicketStats
// @Router /api/tickets/stats [get]
func (h *Handler) TicketStats(c *gin.Context) {
	actor, _ := actorFrom(c)
	stats, err := h.Tickets.Stats(c.Request.Context(), actor.Role)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Ticket details
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} models.Ticket
// @Failure 404 {object} map[string]any
// @Router /api/tickets/{id} [get]
func (h *Handler) TicketDetails(c *gin.Context) {
	actor, _ := actorFrom(c)
	t, err := h.Tickets.Get(c.Request.Context(), actor.Role, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Create ticket
// @Description Reviews and stores an approved ticket, or stores a draft when draft=true.
// @Description An NG verdict is returned with 200 and nothing is stored.
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body CreateTicketRequest true "Ticket"
// @Success 200 {object} service.ReviewOutcome
// @Success 201 {object} service.ReviewOutcome
// @Failure 400 {object} map[string]any
// @Router /api/tickets [post]
func (h *Handler) CreateTicket(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	actor, _ := actorFrom(c)
	in := service.TicketInput{
		ProjectID: req.ProjectID,
		Title:     req.Title,
		Content:   req.Content,
		Category:  checklist.Category(req.Category),
		Metadata:  req.Metadata,
	}

	if req.Draft {
		t, err := h.Tickets.SaveDraft(c.Request.Context(), actor, in)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ticket": t})
		return
	}

	out, err := h.Tickets.Submit(c.Request.Context(), actor, in)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	status := http.StatusOK
	if out.Ticket != nil {
		status = http.StatusCreated
	}
	c.JSON(status, out)
}

// @Summary Edit draft
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body UpdateTicketRequest true "Fields to change"
// @Success 200 {object} models.Ticket
// @Failure 409 {object} map[string]any
// @Router /api/tickets/{id} [patch]
func (h *Handler) UpdateTicket(c *gin.Context) {
	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	actor, _ := actorFrom(c)
	t, err := h.Tickets.Update(c.Request.Context(), actor, c.Param("id"), models.TicketPatch{
		Title:    req.Title,
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Review stored draft
// @Description Moves the draft through reviewing to approved (OK) or back to draft (NG)
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} service.ReviewOutcome
// @Router /api/tickets/{id}/review [post]
func (h *Handler) ReviewTicket(c *gin.Context) {
	actor, _ := actorFrom(c)
	out, err := h.Tickets.ReviewDraft(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Change ticket status
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body StatusRequest true "Target status"
// @Success 200 {object} models.Ticket
// @Failure 403 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /api/tickets/{id}/status [patch]
func (h *Handler) UpdateTicketStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	actor, _ := actorFrom(c)
	t, err := h.Tickets.ChangeStatus(c.Request.Context(), actor, c.Param("id"), models.TicketStatus(req.Status))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Delete ticket
// @Tags tickets
// @Param id path string true "Ticket ID"
// @Success 204
// @Router /api/tickets/{id} [delete]
func (h *Handler) DeleteTicket(c *gin.Context) {
	actor, _ := actorFrom(c)
	if err := h.Tickets.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
