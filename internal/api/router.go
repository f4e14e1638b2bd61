package api

import (
	"net/http"

	"github.com/Ken2664/llm-question-app/internal/api/handlers"
	"github.com/Ken2664/llm-question-app/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Ask       *handlers.AskHandler
	Catalog   *handlers.CatalogHandler
	Questions *handlers.QuestionHandler
	Comments  *handlers.CommentHandler
	Me        *handlers.MeHandler
	Teacher   *handlers.TeacherHandler
	Health    *handlers.HealthHandler
}

type RouterConfig struct {
	AllowedOrigins []string
	Auth           *middleware.Authenticator
	Roles          middleware.RoleLookup
	AskLimiter     *middleware.RateLimiter
	APILimiter     *middleware.RateLimiter
}

func SetupRouter(h Handlers, config RouterConfig, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = false

	r.Use(handlers.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = config.AllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", h.Health.Liveness)

	// A fresh detailed check pings the providers, so it shares the API budget.
	detailedChain := []gin.HandlerFunc{}
	if config.APILimiter != nil {
		detailedChain = append(detailedChain, config.APILimiter.RateLimit())
	}
	detailedChain = append(detailedChain, h.Health.Detailed)
	r.GET("/health/detailed", detailedChain...)

	askChain := []gin.HandlerFunc{}
	if config.AskLimiter != nil {
		askChain = append(askChain, config.AskLimiter.RateLimit())
	}
	askChain = append(askChain, h.Ask.HandleAsk)
	r.Any("/api/ask", askChain...)

	api := r.Group("/api")
	if config.APILimiter != nil {
		api.Use(config.APILimiter.RateLimit())
	}

	requireAuth := config.Auth.RequireAuth()
	requireTeacher := middleware.RequireTeacher(config.Roles, logger)

	api.GET("/faculties", h.Catalog.ListFaculties)
	api.POST("/faculties", requireAuth, h.Catalog.CreateFaculty)
	api.GET("/courses", h.Catalog.ListCourses)
	api.POST("/courses", requireAuth, h.Catalog.CreateCourse)
	api.GET("/courses/:id/lectures", h.Catalog.ListLectures)
	api.POST("/lectures", requireAuth, h.Catalog.GetOrCreateLecture)

	api.GET("/questions", h.Questions.SearchQuestions)
	api.POST("/questions", requireAuth, h.Questions.CreateQuestion)
	api.GET("/questions/:id", h.Questions.GetQuestion)
	api.PATCH("/questions/:id/solved", requireAuth, h.Questions.UpdateSolved)

	api.GET("/questions/:id/comments", h.Comments.ListComments)
	api.POST("/questions/:id/comments", requireAuth, h.Comments.AddComment)
	api.PATCH("/comments/:id/read", requireAuth, h.Comments.MarkRead)
	api.GET("/questions/:id/teach-comments", h.Comments.ListTeachComments)
	api.POST("/questions/:id/teach-comments", requireAuth, requireTeacher, h.Comments.AddTeachComment)
	api.PATCH("/teach-comments/:id/read", requireAuth, h.Comments.MarkTeachRead)

	me := api.Group("/me", requireAuth)
	{
		me.GET("/unresolved", h.Me.Unresolved)
		me.GET("/profile", h.Me.GetProfile)
		me.PUT("/profile", h.Me.UpdateProfile)
	}

	teacher := api.Group("/teacher", requireAuth, requireTeacher)
	{
		teacher.GET("/unresolved", h.Teacher.Unresolved)
		teacher.POST("/courses/:id/claim", h.Teacher.ClaimCourse)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	return r
}
