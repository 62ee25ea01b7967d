package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-library-api/internal/interface/http"
	"github.com/oksasatya/go-library-api/internal/interface/middleware"
	"github.com/oksasatya/go-library-api/pkg/helpers"
)

// BookModule wires the catalogue. Reads are public, writes need a session.
type BookModule struct {
	Handler *handlers.BookHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewBookModule(h *handlers.BookHandler, jwt *helpers.JWTManager, rdb *redis.Client) *BookModule {
	return &BookModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *BookModule) Register(rg *gin.RouterGroup) {
	readLimiter := middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.GET("/books", readLimiter, m.Handler.List)
	rg.GET("/books/search", readLimiter, m.Handler.Search)
	rg.GET("/book/:id", readLimiter, m.Handler.Get)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	auth.Use(middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/book", m.Handler.Create)
		auth.PUT("/book", m.Handler.Update)
		auth.DELETE("/book/:id", m.Handler.Delete)
	}
}
