package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ticketgate/backend/internal/checklist"
	"github.com/ticketgate/backend/internal/review"
)

type ReviewRequest struct {
	Title    string            `json:"title"`
	Category string            `json:"category"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// @Summary Review ticket instructions
// @Description Judges whether the instructions cover every checklist item for the category
// @Tags review
// @Accept json
// @Produce json
// @Param request body ReviewRequest true "Ticket draft"
// @Success 200 {object} review.Verdict
// @Failure 400 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /api/ai/review [post]
func (h *Handler) Review(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}

	verdict, err := h.Reviewer.Review(c.Request.Context(), review.Request{
		Title:    req.Title,
		Category: checklist.Category(req.Category),
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

type CategoryInfo struct {
	Category       checklist.Category        `json:"category"`
	Label          string                    `json:"label"`
	Service        checklist.Service         `json:"service"`
	Checklist      []string                  `json:"checklist"`
	TemplateFields []checklist.TemplateField `json:"template_fields"`
}

// @Summary List ticket categories
// @Description Labels, required checklist items and form fields per category
// @Tags review
// @Produce json
// @Success 200 {array} CategoryInfo
// @Router /api/categories [get]
func (h *Handler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, categoryCatalogue())
}

func categoryCatalogue() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(checklist.Categories()))
	for _, cat := range checklist.Categories() {
		out = append(out, CategoryInfo{
			Category:       cat,
			Label:          checklist.Label(cat),
			Service:        checklist.ServiceOf(cat),
			Checklist:      checklist.ChecklistFor(cat),
			TemplateFields: checklist.TemplateFieldsFor(cat),
		})
	}
	return out
}
