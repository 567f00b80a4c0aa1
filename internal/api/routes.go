package api

import (
	"net/http"

	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/metrics"
	"cfq/wod-board/internal/ratelimit"
	"cfq/wod-board/internal/service"
	"cfq/wod-board/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps carries everything the router needs. Nil limiters disable rate limiting;
// a nil Gatherer leaves /metrics unmounted.
type Deps struct {
	Sessions           *session.Manager
	AuthService        service.AuthService
	WodService         service.WodService
	ScoreService       service.ScoreService
	LeaderboardService service.LeaderboardService
	RecordService      service.PersonalRecordService
	Metrics            *metrics.Manager
	Gatherer           prometheus.Gatherer
	LoginLimiter       *ratelimit.KeyedRateLimiter
	WriteLimiter       *ratelimit.KeyedRateLimiter
}

// NewRouter builds the engine with the global middleware chain and all routes.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	if deps.Metrics != nil {
		router.Use(PanicRecovery(deps.Metrics), RequestMetrics(deps.Metrics))
	} else {
		router.Use(PanicRecovery(nil))
	}
	router.Use(RequestLogger())

	SetupRoutes(router, deps)
	return router
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	RegisterValidators()

	authHandler := NewAuthHandler(deps.AuthService)
	wodHandler := NewWodHandler(deps.WodService)
	scoreHandler := NewScoreHandler(deps.ScoreService)
	leaderboardHandler := NewLeaderboardHandler(deps.LeaderboardService)
	recordsHandler := NewRecordsHandler(deps.RecordService)

	authMiddleware := AuthMiddleware(deps.Sessions)
	adminOnly := RoleMiddleware(domain.RoleAdmin)
	loginLimit := limitOrPass(deps.LoginLimiter, deps.Metrics)
	writeLimit := limitOrPass(deps.WriteLimiter, deps.Metrics)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/login", loginLimit, authHandler.Login)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}

		wods := apiV1.Group("/wods")
		{
			wods.GET("", wodHandler.ListWods)
			wods.GET("/today", wodHandler.GetTodayWod)
			wods.GET("/titles", wodHandler.Titles)
			wods.GET("/calendar", wodHandler.Calendar)
			wods.GET("/day/:date", wodHandler.GetWodByDate)

			wods.POST("", authMiddleware, adminOnly, writeLimit, wodHandler.CreateWod)
			wods.PUT("/id/:id", authMiddleware, adminOnly, writeLimit, wodHandler.UpdateWod)
			wods.PUT("/day/:date", authMiddleware, adminOnly, writeLimit, wodHandler.UpdateWodByDate)
		}

		leaderboard := apiV1.Group("/leaderboard")
		{
			leaderboard.GET("/today", leaderboardHandler.GetTodayLeaderboard)
			leaderboard.GET("/day/:date", leaderboardHandler.GetLeaderboard)
			leaderboard.POST("/day/:date/export", authMiddleware, adminOnly, writeLimit, leaderboardHandler.ExportLeaderboard)
		}

		scores := apiV1.Group("/scores")
		{
			scores.GET("", scoreHandler.ListScores)
			scores.POST("", authMiddleware, adminOnly, writeLimit, scoreHandler.RecordScore)
		}

		me := apiV1.Group("/me")
		me.Use(authMiddleware)
		{
			me.GET("", authHandler.Me)
			me.GET("/wods", scoreHandler.MyWods)
			me.GET("/records", recordsHandler.ListRecords)
			me.PUT("/records", writeLimit, recordsHandler.SaveRecords)
		}

		admin := apiV1.Group("/admin")
		admin.Use(authMiddleware, adminOnly)
		{
			admin.POST("/users", writeLimit, authHandler.CreateUser)
		}
	}
}

func limitOrPass(limiter *ratelimit.KeyedRateLimiter, m *metrics.Manager) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return RateLimit(limiter, m)
}
