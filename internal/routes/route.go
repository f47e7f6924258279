package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/talentfolio/server/internal/container"
	"github.com/talentfolio/server/internal/handlers"
	"github.com/talentfolio/server/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "talentfolio-api",
			})
		})

		// public routes
		v1.POST("/signup", handlers.Register(container.UserService))
		v1.POST("/login", handlers.Login(container.UserService, container.Config))
		v1.GET("/options", handlers.ProfileOptions(container.ProfileService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.JWTSecret, container.Logger))

	userRoutes := protected.Group("/users")
	{
		userRoutes.GET("", handlers.ListUsers(container.UserService))
		userRoutes.GET("/search", handlers.SearchUsers(container.UserService))
		userRoutes.GET("/:id/profile", handlers.GetProfile(container.UserService))
		userRoutes.PATCH("/:id/profile", handlers.UpdateProfile(container.ProfileService))
		userRoutes.PATCH("/:id/profile/arrays", handlers.UpdateProfileArrays(container.ProfileService))

		userRoutes.POST("/:id/profile/experience", handlers.AddExperience(container.ProfileService))
		userRoutes.PUT("/:id/profile/experience/:itemId", handlers.UpdateExperience(container.ProfileService))
		userRoutes.DELETE("/:id/profile/experience/:itemId", handlers.DeleteExperience(container.ProfileService))

		userRoutes.POST("/:id/profile/education", handlers.AddEducation(container.ProfileService))
		userRoutes.PUT("/:id/profile/education/:itemId", handlers.UpdateEducation(container.ProfileService))
		userRoutes.DELETE("/:id/profile/education/:itemId", handlers.DeleteEducation(container.ProfileService))

		userRoutes.POST("/:id/profile/photo", handlers.UploadProfilePhoto(container.ProfileService))
	}

	return r
}
