package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/milesync/milesync-backend/internal/handlers"
	"github.com/milesync/milesync-backend/internal/logger"
	"github.com/milesync/milesync-backend/internal/middleware"
	"github.com/milesync/milesync-backend/internal/services"
	"github.com/milesync/milesync-backend/internal/utils"
)

type Router struct {
	engine *gin.Engine
}

func NewRouter(
	log *logger.Logger,
	authService services.AuthService,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	tripHandler *handlers.TripHandler,
	gapHandler *handlers.GapHandler,
	uploadHandler *handlers.UploadHandler,
) *Router {
	engine := gin.Default()

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{utils.GetEnv("FRONTEND_ORIGIN", "http://localhost:3000", log)},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Refresh-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/healthcheck", handlers.HealthCheck)

	api := engine.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.RequireAuth(authService, log))
		{
			protected.POST("/auth/refresh", authHandler.Refresh)
			protected.POST("/auth/logout", authHandler.Logout)

			protected.GET("/user", userHandler.GetMe)

			mileage := protected.Group("/mileage")
			{
				mileage.GET("/trips", tripHandler.List)
				mileage.POST("/trips", tripHandler.Create)
				mileage.PUT("/trips/:id", tripHandler.Update)
				mileage.DELETE("/trips/:id", tripHandler.Delete)
				mileage.GET("/summary", tripHandler.Summary)

				mileage.GET("/gaps", gapHandler.List)
				mileage.POST("/gaps/detect", gapHandler.Detect)
				mileage.PUT("/gaps/:id/resolve", gapHandler.Resolve)
			}

			protected.POST("/upload/pdf", uploadHandler.UploadPDF)
		}
	}

	return &Router{engine: engine}
}

func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
