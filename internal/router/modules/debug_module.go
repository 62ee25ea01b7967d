package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-library-api/internal/interface/middleware"
)

// DebugModule exposes expvar metrics to private networks only.
type DebugModule struct {
	Redis *redis.Client
}

func NewDebugModule(rdb *redis.Client) *DebugModule { return &DebugModule{Redis: rdb} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIPAndPath(), nil)
	rg.GET("/debug/vars", middleware.OnlyAllowed(middleware.AllowPrivateIP()), rl, gin.WrapH(expvar.Handler()))
}
