package routes

import (
	"editorial-workflow-api/controllers"
	"editorial-workflow-api/middleware"
	"editorial-workflow-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Editorial Workflow API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.POST("", controllers.CreateSubmission)
				submissions.DELETE("/:id", controllers.DeleteSubmission)

				// Files
				submissions.POST("/:id/files", controllers.UploadFile)

				// Reviews
				submissions.GET("/:id/reviews", controllers.GetSubmissionReviews)
				submissions.GET("/:id/review-rounds", controllers.GetSubmissionReviewRounds)
			}

			// Publication versions
			publications := protected.Group("/publications")
			{
				publications.POST("/:id/versions", controllers.CreatePublicationVersion)
				publications.PUT("/:id", controllers.UpdatePublication)
				publications.DELETE("/:id", controllers.DeletePublication)

				// Only editors and managers drive the state machine
				editorial := middleware.RequireRole(models.RoleSiteAdmin, models.RoleManager, models.RoleSectionEditor)
				publications.POST("/:id/publish", editorial, controllers.PublishPublication)
				publications.POST("/:id/unpublish", editorial, controllers.UnpublishPublication)
				publications.POST("/:id/schedule", editorial, controllers.SchedulePublication)
				publications.POST("/:id/decline", editorial, controllers.DeclinePublication)
			}

			// Manuscript files
			files := protected.Group("/files")
			{
				files.PUT("/:id", controllers.UpdateFile)
				files.POST("/:id/copy", controllers.CopyFile)
				files.DELETE("/:id", controllers.DeleteFile)
				files.GET("/:id/download", controllers.DownloadFile)
				files.POST("/:id/link", controllers.LinkVariant)
				files.POST("/:id/unlink", controllers.UnlinkVariant)
			}
		}
	}
}
