package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-library-api/config"
	"github.com/oksasatya/go-library-api/internal/container"
	"github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-library-api/internal/infrastructure/objectstore"
	pginfra "github.com/oksasatya/go-library-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-library-api/internal/infrastructure/redislock"
	"github.com/oksasatya/go-library-api/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-library-api/internal/interface/http"
	"github.com/oksasatya/go-library-api/internal/interface/middleware"
	"github.com/oksasatya/go-library-api/internal/router"
	"github.com/oksasatya/go-library-api/pkg/helpers"
	"github.com/oksasatya/go-library-api/pkg/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// Initialize Postgres pool
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}

	// Run migrations using database/sql with pgx stdlib
	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	db, err := pginfra.NewGorm(pool, logger)
	if err != nil {
		logger.Fatalf("failed to open gorm: %v", err)
	}

	c := &container.Container{
		Config: cfg,
		Logger: logger,
		PGPool: pool,
		DB:     db,
		JWT:    helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL),
	}
	defer c.Close()

	// Redis backs sessions, rate limits and the per-user profile lock
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		c.Redis = rdb
		c.Locker = redislock.New(rdb, cfg.ProfileLockTTL, logger)
	} else {
		logger.Warn("REDIS_ADDR empty; sessions are not tracked and profile locks are process-local")
		c.Locker = memory.NewLocker()
	}

	remote, closeRemote, err := newRemoteStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init %s asset store: %v", cfg.StorageProvider, err)
	}
	defer closeRemote()
	c.Remote = remote

	// Elasticsearch (optional)
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(ctx, addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err == nil {
			c.BookIndex, err = search.NewBookIndex(es, cfg.ESBooksIndex)
		}
		if err != nil {
			helpers.LogWarn(logger, "book search disabled", err, logrus.Fields{"addrs": addrs})
			c.BookIndex = nil
		}
	}

	// RabbitMQ email queue (optional)
	if cfg.MailSendEnabled && cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, cfg.AppName)
		if err != nil {
			helpers.LogWarn(logger, "email notices disabled", err, logrus.Fields{"queue": cfg.RabbitMQEmailQueue})
		} else {
			c.Jobs = pub
		}
	}

	validation.Init(handlers.ValidationRules()...)

	// Gin engine and global middleware
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(cfg.TrustProxy))
	// CORS
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}

	// Registry: register modules from the container
	reg := router.NewRegistry(r)
	router.InitModules(reg, c)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}

// newRemoteStore builds the asset store named by STORAGE_PROVIDER.
func newRemoteStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.RemoteAssetStore, func(), error) {
	noop := func() {}
	switch cfg.StorageProvider {
	case config.StorageS3:
		st, err := objectstore.NewS3(ctx, objectstore.S3Config{
			Endpoint:        cfg.S3EndpointURL(),
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
			PublicURL:       cfg.S3PublicURL,
		}, logger)
		return st, noop, err
	case config.StorageMemory:
		logger.Warn("STORAGE_PROVIDER=memory; uploaded images are lost on restart")
		return memory.NewRemoteStore(""), noop, nil
	default:
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return nil, noop, err
		}
		st, err := objectstore.NewGCS(client, cfg.GCSBucket)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return st, func() { _ = client.Close() }, nil
	}
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
