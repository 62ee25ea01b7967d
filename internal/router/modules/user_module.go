package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-library-api/internal/interface/http"
	"github.com/oksasatya/go-library-api/internal/interface/middleware"
	"github.com/oksasatya/go-library-api/pkg/helpers"
)

// UserModule wires account and profile routes.
// Public: POST /api/user, POST /api/login, POST /api/refresh
// Protected: POST /api/logout, GET /api/me, PUT /api/me, DELETE /api/me/image
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	// Public with rate limiting
	registerLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil) // 10 req/min per IP
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/user", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.GetProfile)
		auth.PUT("/me", m.Handler.UpdateProfile)
		auth.DELETE("/me/image", m.Handler.DeleteImage)
	}
}
