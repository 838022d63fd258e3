package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lostfound/backend/internal/service"
	"github.com/lostfound/backend/pkg/logging"
)

// HealthChecker reports whether storage is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Services are the operations the routes expose
type Services struct {
	Posts     *service.PostService
	Comments  *service.CommentService
	Search    *service.SearchService
	Users     *service.UserService
	Dashboard *service.DashboardService
}

// NewServices wires every service over the same stores
func NewServices(stores service.Stores) Services {
	posts := service.NewPostService(stores)
	return Services{
		Posts:     posts,
		Comments:  service.NewCommentService(stores),
		Search:    service.NewSearchService(posts),
		Users:     service.NewUserService(stores, posts),
		Dashboard: service.NewDashboardService(stores, posts),
	}
}

// Router sets up API routes
type Router struct {
	services Services
	health   HealthChecker
	logger   *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(services Services, health HealthChecker) *Router {
	return &Router{
		services: services,
		health:   health,
		logger:   logging.GetLogger().With(zap.String("component", "api-router")),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(requestMiddleware(r.logger), viewerMiddleware())

	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	auth := requireViewer()

	posts := api.Group("/posts")
	posts.GET("", r.listPosts)
	posts.POST("", auth, r.createPost)
	posts.GET("/:id", r.getPost)
	posts.PATCH("/:id", auth, r.updatePost)
	posts.DELETE("/:id", auth, r.deletePost)
	posts.POST("/:id/like", auth, r.likePost)
	posts.DELETE("/:id/like", auth, r.unlikePost)
	posts.GET("/:id/comments", r.listComments)
	posts.POST("/:id/comments", auth, r.createComment)

	comments := api.Group("/comments")
	comments.GET("/:id", r.getComment)
	comments.PATCH("/:id", auth, r.updateComment)
	comments.DELETE("/:id", auth, r.deleteComment)
	comments.POST("/:id/like", auth, r.likeComment)
	comments.DELETE("/:id/like", auth, r.unlikeComment)

	api.GET("/search", r.search)

	users := api.Group("/users")
	users.GET("/:id", r.getUser)
	users.GET("/:id/posts", r.userPosts)
	users.GET("/:id/stats", r.userStats)
	api.GET("/profiles/:username", r.getUserByUsername)

	me := api.Group("/me", auth)
	me.GET("", r.getMe)
	me.PATCH("", r.updateMe)

	dashboard := api.Group("/dashboard", auth)
	dashboard.GET("/stats", r.dashboardStats)
	dashboard.GET("/posts", r.dashboardPosts)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	if r.health != nil {
		if err := r.health.Health(c.Request.Context()); err != nil {
			r.logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "UNAVAILABLE",
				"service": "lostfound-api",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "lostfound-api",
	})
}

// fail writes the mapped error and keeps the cause on the context for logging
func (r *Router) fail(c *gin.Context, err error) {
	apiErr := FromError(err)
	if apiErr.Code >= http.StatusInternalServerError {
		r.logger.Error("Request error", zap.String("route", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	abort(c, apiErr)
}
