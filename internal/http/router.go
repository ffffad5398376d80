package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/skillforge/skillforge-backend/internal/domain"
	httpH "github.com/skillforge/skillforge-backend/internal/http/handlers"
	httpMW "github.com/skillforge/skillforge-backend/internal/http/middleware"
)

type RouterConfig struct {
	ServiceName    string
	AuthMiddleware *httpMW.AuthMiddleware

	StudentJobHandler   *httpH.StudentJobHandler
	EmbeddingHandler    *httpH.EmbeddingHandler
	NotificationHandler *httpH.NotificationHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Student-facing job matching
		if cfg.StudentJobHandler != nil {
			protected.GET("/student-jobs/recommended", cfg.StudentJobHandler.GetRecommended)
			protected.GET("/student-jobs/applications/me", cfg.StudentJobHandler.MyApplications)
			protected.GET("/student-jobs", cfg.StudentJobHandler.BrowseJobs)
			protected.GET("/student-jobs/:id", cfg.StudentJobHandler.GetJobDetail)
			protected.POST("/student-jobs/:id/apply", cfg.StudentJobHandler.Apply)
		}

		// Notifications
		if cfg.NotificationHandler != nil {
			protected.GET("/notifications", cfg.NotificationHandler.List)
			protected.POST("/notifications/:id/read", cfg.NotificationHandler.MarkRead)
		}

		// Embedding refresh
		if cfg.EmbeddingHandler != nil {
			protected.POST("/embeddings/students/refresh", cfg.EmbeddingHandler.RefreshMyEmbedding)
			if cfg.AuthMiddleware != nil {
				adminOnly := protected.Group("/")
				adminOnly.Use(cfg.AuthMiddleware.RequireUserType(domain.UserTypeAdmin))
				adminOnly.POST("/embeddings/jobs/refresh-all", cfg.EmbeddingHandler.RefreshAllJobEmbeddings)
				adminOnly.POST("/embeddings/jobs/:id/refresh", cfg.EmbeddingHandler.RefreshJobEmbedding)
			}
		}
	}

	return r
}
