package bootstrap

import (
	"database/sql"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/golinks/config"
	"github.com/target/golinks/internal/core"
	"github.com/target/golinks/internal/data"
	"github.com/target/golinks/internal/ports"
	"github.com/target/golinks/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth  *service.AuthService
	Links *service.LinkService
}

// ServiceDeps contains dependencies needed to create services.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Provider    ports.AuthProvider
	Logger      *slog.Logger
}

// NewServices wires repositories and services from shared infrastructure.
func NewServices(deps *ServiceDeps) ServiceContainer {
	var cache core.CacheRepository
	if deps.Config.Cache.Enabled && deps.RedisClient != nil {
		cache = data.NewRedisCacheRepo(deps.RedisClient)
	}

	links := service.NewLinkService(service.LinkServiceOptions{
		Store:    data.NewLinkRepo(deps.DB),
		Cache:    cache,
		CacheTTL: deps.Config.Cache.LinkTTL,
		Logger:   deps.Logger,
	})

	return ServiceContainer{
		Auth:  service.NewAuthService(deps.Provider, deps.Logger),
		Links: links,
	}
}
