package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/config"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/handler"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/middleware"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/response"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Quiz     *handler.QuizHandler
	Question *handler.QuestionHandler
	Taxonomy *handler.TaxonomyHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// Rate limiter for quiz generation, the only anonymous write endpoint.
	quizLimiter := middleware.NewRateLimiter(cfg.QuizRatePerMinute, time.Minute)

	// ─── 2. Player Group (Anonymous OK) ────────────────────────────────
	// Quizzes are playable without an account; identity, when present,
	// ties the quiz to its owner.
	quizzes := router.Group("/api/v1/quizzes")
	quizzes.Use(middleware.OptionalJWT(authService))
	{
		quizzes.POST("", quizLimiter.Middleware(), handlers.Quiz.Create)
		quizzes.GET("/:slug", handlers.Quiz.Get)
		quizzes.POST("/:slug/answer", handlers.Quiz.Answer)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.OptionalJWT(authService))
	{
		ws.GET("/quizzes/:slug/stream", handlers.WS.QuizzStream)
	}

	// ─── 4. Taxonomy Group (Public, Read-Only) ─────────────────────────
	taxonomy := router.Group("/api/v1/taxonomy")
	{
		taxonomy.GET("/locales", handlers.Taxonomy.ListLocales)
		taxonomy.GET("/contests", handlers.Taxonomy.ListContests)
		taxonomy.GET("/tags", handlers.Taxonomy.ListTags)
	}

	// ─── 5. Question Management Group (JWT) ────────────────────────────
	questions := router.Group("/api/v1/questions")
	questions.Use(middleware.RequireJWT(authService))
	{
		questions.GET("", handlers.Question.List)
		questions.GET("/:id", handlers.Question.Get)
		questions.DELETE("/:id", handlers.Question.Delete)

		questions.POST("/open", handlers.Question.CreateOpen)
		questions.PUT("/open/:id", handlers.Question.UpdateOpen)
		questions.POST("/mcq", handlers.Question.CreateMCQ)
		questions.PUT("/mcq/:id", handlers.Question.UpdateMCQ)
		questions.POST("/linked", handlers.Question.CreateLinked)
		questions.PUT("/linked/:id", handlers.Question.UpdateLinked)
	}

	return router
}
