package http

import (
	"github.com/gin-gonic/gin"

	"legalresearch/internal/bootstrap"
	"legalresearch/internal/transport/http/handler"
	"legalresearch/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	authHandler := handler.NewAuthHandler(app.AuthService)
	orgHandler := handler.NewOrganizationHandler(app.TenantService)
	docHandler := handler.NewDocumentHandler(app.DocumentService)
	queryHandler := handler.NewQueryHandler(app.QueryService)

	v1 := router.Group("/api/v1")

	// Onboarding paths carry no tenant context yet.
	v1.POST("/organizations", orgHandler.Create)
	v1.POST("/users", orgHandler.CreateUser)
	v1.POST("/auth/login", authHandler.Login)

	authed := v1.Group("")
	authed.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))

	authed.GET("/auth/me", authHandler.Me)

	authed.GET("/organization", orgHandler.Get)
	authed.GET("/organization/users", orgHandler.ListUsers)
	authed.PUT("/organization/tier", orgHandler.UpdateTier)
	authed.DELETE("/organization", orgHandler.Delete)

	authed.POST("/documents", docHandler.Ingest)
	authed.GET("/documents", docHandler.List)
	authed.GET("/documents/:id", docHandler.Get)
	authed.DELETE("/documents/:id", docHandler.Delete)
	authed.PUT("/documents/:id/status", docHandler.UpdateStatus)
	authed.POST("/documents/:id/vector-indexed", docHandler.MarkVectorIndexed)

	authed.POST("/queries", queryHandler.Record)
	authed.GET("/queries", queryHandler.List)
	authed.GET("/queries/:id", queryHandler.Get)
	authed.POST("/queries/:id/feedback", queryHandler.Feedback)
	authed.GET("/stats/usage", queryHandler.Usage)

	return router
}
