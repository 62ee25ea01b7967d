package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/oksasatya/go-library-api/config"
	"github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/pkg/helpers"
)

// Container holds the infrastructure built in main and shared with the router.
// Optional parts (Redis, BookIndex, Jobs) are nil when not configured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	PGPool *pgxpool.Pool
	DB     *gorm.DB
	Redis  *redis.Client
	JWT    *helpers.JWTManager

	// Remote is the object store profile images are uploaded to.
	Remote repository.RemoteAssetStore
	// Locker serialises profile mutations per user.
	Locker repository.UserLocker

	// BookIndex backs book search; nil when Elasticsearch is not configured.
	BookIndex repository.BookIndex
	Jobs      *helpers.RabbitPublisher
}

// Close releases the clients owned by the container.
func (c *Container) Close() {
	if c.Jobs != nil {
		c.Jobs.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
}
