package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ticketgate/backend/internal/config"
	"github.com/ticketgate/backend/internal/http/handlers"
	"github.com/ticketgate/backend/internal/http/middleware"
	"github.com/ticketgate/backend/internal/models"
	"github.com/ticketgate/backend/internal/service"

	_ "github.com/ticketgate/backend/docs"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	DB       handlers.Pinger
	Sessions middleware.SessionLookup
	Reviewer service.Reviewer
	Tickets  *service.TicketService
	Projects handlers.ProjectStore
}

func Router(cfg config.Config, deps Deps, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.OTelEnabled {
		r.Use(otelgin.Middleware("ticketgate"))
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" || cfg.CORSAllowed == "" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = splitOrigins(cfg.CORSAllowed)
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		DB:        deps.DB,
		Reviewer:  deps.Reviewer,
		Tickets:   deps.Tickets,
		Projects:  deps.Projects,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.GET("/categories", h.Categories)

	authed := api.Group("")
	authed.Use(middleware.Auth(deps.Sessions))
	authors := middleware.RequireRole(models.RoleFront, models.RoleAdmin)
	{
		authed.POST("/ai/review", authors, h.Review)

		authed.GET("/tickets", h.TicketsList)
		authed.GET("/tickets/stats", h.TicketStats)
		authed.GET("/tickets/:id", h.TicketDetails)
		authed.POST("/tickets", authors, h.CreateTicket)
		authed.PATCH("/tickets/:id", authors, h.UpdateTicket)
		authed.DELETE("/tickets/:id", authors, h.DeleteTicket)
		authed.POST("/tickets/:id/review", authors, h.ReviewTicket)
		authed.PATCH("/tickets/:id/status", h.UpdateTicketStatus)

		authed.GET("/projects", h.ProjectsList)
		authed.GET("/projects/:id", h.ProjectDetails)
		authed.POST("/projects", authors, h.CreateProject)
		authed.PATCH("/projects/:id", authors, h.UpdateProject)
		authed.DELETE("/projects/:id", middleware.RequireRole(models.RoleAdmin), h.DeleteProject)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/projects/import", h.ImportProjects)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
