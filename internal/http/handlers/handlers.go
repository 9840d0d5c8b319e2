package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/ticketgate/backend/internal/db"
	"github.com/ticketgate/backend/internal/http/middleware"
	"github.com/ticketgate/backend/internal/models"
	"github.com/ticketgate/backend/internal/review"
	"github.com/ticketgate/backend/internal/service"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// ProjectStore is the project persistence the handlers use. *db.Store
// implements it.
type ProjectStore interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (models.Project, error)
	CreateProject(ctx context.Context, p models.Project) (models.Project, error)
	UpdateProject(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	InsertProjects(ctx context.Context, projects []models.Project) (int64, error)
}

type Handler struct {
	DB        Pinger
	Reviewer  service.Reviewer
	Tickets   *service.TicketService
	Projects  ProjectStore
	Validator *validator.Validate
	Logger    zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.DB.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError renders {"error": message, "code": code, "details"?}.
func writeError(c *gin.Context, status int, code string, message string, details any) {
	body := gin.H{
		"error": message,
		"code":  code,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, body)
}

// writeServiceError maps domain errors onto HTTP statuses.
func (h *Handler) writeServiceError(c *gin.Context, err error) {
	var (
		inputErr *service.InputError
		valErr   *review.ValidationError
	)
	switch {
	case errors.Is(err, review.ErrConfiguration):
		writeError(c, http.StatusServiceUnavailable, "AI_NOT_CONFIGURED", "AIレビューが設定されていません", nil)
	case errors.As(err, &valErr):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "指示内容、カテゴリ、タイトルは必須です", gin.H{"field": valErr.Field})
	case errors.As(err, &inputErr):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", inputErr.Error(), gin.H{"field": inputErr.Field})
	case errors.Is(err, review.ErrParse):
		h.logError(c, err)
		writeError(c, http.StatusInternalServerError, "AI_PARSE_ERROR", "AIからの応答を解析できませんでした", nil)
	case errors.Is(err, review.ErrBackend):
		h.logError(c, err)
		writeError(c, http.StatusInternalServerError, "AI_BACKEND_ERROR", "AIレビュー処理中にエラーが発生しました", nil)
	case errors.Is(err, service.ErrForbidden):
		writeError(c, http.StatusForbidden, "FORBIDDEN", "この操作を行う権限がありません", err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(c, http.StatusConflict, "INVALID_TRANSITION", "このステータスには変更できません", err.Error())
	case errors.Is(err, db.ErrConflict):
		writeError(c, http.StatusConflict, "CONFLICT", "チケットの状態が変更されています", err.Error())
	case errors.Is(err, db.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	case errors.Is(err, db.ErrReference):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Referenced record does not exist", err.Error())
	default:
		h.logError(c, err)
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error", nil)
	}
}

func (h *Handler) logError(c *gin.Context, err error) {
	_ = c.Error(err)
	h.Logger.Error().
		Err(err).
		Str("request_id", c.GetString(middleware.RequestIDHeader)).
		Str("path", c.FullPath()).
		Msg("request failed")
}

func actorFrom(c *gin.Context) (service.Actor, bool) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.UserActor(sess.UserID, sess.Role), true
}
