package router

import (
	"github.com/oksasatya/go-library-api/internal/application"
	"github.com/oksasatya/go-library-api/internal/container"
	"github.com/oksasatya/go-library-api/internal/domain/repository"
	pginfra "github.com/oksasatya/go-library-api/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-library-api/internal/interface/http"
	"github.com/oksasatya/go-library-api/internal/router/modules"
)

type UserModuleDeps struct {
	Repo    repository.UserRepository
	Images  *application.ProfileImageManager
	Service *application.UserService
	Handler *handlers.UserHandler
}

type BookModuleDeps struct {
	Repo    repository.BookRepository
	Service *application.BookService
	Handler *handlers.BookHandler
}

func buildUserDeps(c *container.Container) UserModuleDeps {
	cfg := c.Config
	repo := pginfra.NewUserRepository(c.DB)
	assets := pginfra.NewAssetRepository(c.DB)

	images := application.NewProfileImageManager(repo, assets, c.Remote, c.Logger, cfg.AssetFolder)

	service := application.NewUserService(repo, images, c.JWT, c.Logger)
	service.Locker = c.Locker
	service.OpTimeout = cfg.ProfileLockTTL * 4 / 5
	service.Redis = c.Redis
	service.AppName = cfg.AppName
	service.NotifyTo = cfg.MailNotifyTo
	if c.Jobs != nil {
		service.Jobs = c.Jobs
	}

	handler := handlers.NewUserHandler(service, c.Logger, cfg.CookieDomain, cfg.CookieSecure, cfg.MaxUploadBytes)

	return UserModuleDeps{Repo: repo, Images: images, Service: service, Handler: handler}
}

func buildBookDeps(c *container.Container) BookModuleDeps {
	repo := pginfra.NewBookRepository(c.DB)

	service := application.NewBookService(repo, c.BookIndex, c.Logger)

	return BookModuleDeps{Repo: repo, Service: service, Handler: handlers.NewBookHandler(service, c.Logger)}
}

// InitModules builds every feature module from the container and adds it to the registry.
// Call once during startup.
func InitModules(r *Registry, c *container.Container) {
	userDeps := buildUserDeps(c)
	bookDeps := buildBookDeps(c)

	r.Add(modules.NewUserModule(userDeps.Handler, c.JWT, c.Redis))
	r.Add(modules.NewBookModule(bookDeps.Handler, c.JWT, c.Redis))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
