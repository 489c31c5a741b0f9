package router

import (
	"net/http"
	"time"

	"socialshop/internal/config"
	"socialshop/internal/handlers"
	"socialshop/internal/middleware"
	"socialshop/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const sessionName = "socialshop_session"

// Deps are the services the routes are built on.
type Deps struct {
	DB       *gorm.DB
	Posts    *services.PostService
	Products *services.ProductService
	Users    *services.UserService
}

// New builds the engine with the global middleware chain and every route.
func New(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Recovery())
	RegisterRoutes(r, cfg, deps)
	return r
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps) {
	r.Use(corsMiddleware(cfg.CORSOrigins))

	if cfg.SessionSecret != "" {
		store := cookie.NewStore([]byte(cfg.SessionSecret))
		store.Options(sessions.Options{
			Path:     "/",
			MaxAge:   86400 * 7,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		r.Use(sessions.Sessions(sessionName, store))
	}
	r.Use(middleware.LoadIdentity(cfg.JWTSecret))

	// Handlers
	postHandler := handlers.NewPostHandler(deps.Posts, cfg.AuthMode)
	productHandler := handlers.NewProductHandler(deps.Products)
	userHandler := handlers.NewUserHandler(deps.Users)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r.GET("/healthz", healthHandler.Check)

	api := r.Group("/api")
	{
		api.GET("/posts", postHandler.List)     // 帖子列表
		api.GET("/posts/:id", postHandler.Get)  // 帖子详情
		api.GET("/products", productHandler.List)
		api.GET("/products/:id", productHandler.Get)
		api.GET("/users/:id", userHandler.Profile) // 用户主页
	}

	// 写操作限流
	writes := r.Group("/api")
	writes.Use(limiter.Middleware())
	{
		writes.POST("/posts", postHandler.Create)
		writes.PUT("/posts", postHandler.Update)
		writes.DELETE("/posts", postHandler.Delete)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
