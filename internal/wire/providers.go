package wire

import (
	"context"

	tenantapp "orchestrai-web/internal/application/tenant"
	"orchestrai-web/internal/config"
	"orchestrai-web/internal/domain/repository"
	"orchestrai-web/internal/infrastructure/messaging"
	"orchestrai-web/internal/infrastructure/persistence/memory"
	"orchestrai-web/internal/infrastructure/persistence/postgres"
	"orchestrai-web/internal/infrastructure/persistence/redis"
	"orchestrai-web/internal/interfaces/http/handler"
	"orchestrai-web/internal/interfaces/http/middleware"
	"orchestrai-web/pkg/logger"
)

// DirectoryLayer 租户目录数据层（用于 bootstrap）
type DirectoryLayer struct {
	PgClient   *postgres.Client
	TenantRepo *postgres.TenantRepository
	// Directory 状态变更经由目录以清理租户缓存
	Directory *tenantapp.Directory
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvidePostgresClientOptional 租户目录使用内存后端时不连接 PostgreSQL
func ProvidePostgresClientOptional(cfg *config.Config) (*postgres.Client, func(), error) {
	if cfg.Tenant.Directory.Backend == "memory" {
		return nil, func() {}, nil
	}
	return ProvidePostgresClient(cfg)
}

// ProvideTenantRepository 按后端提供租户仓储，内存后端预置演示租户
func ProvideTenantRepository(ctx context.Context, pg *postgres.Client) (repository.TenantRepository, error) {
	if pg != nil {
		return postgres.NewTenantRepository(pg), nil
	}
	repo := memory.NewTenantRepository()
	if err := tenantapp.SeedTenants(ctx, repo, tenantapp.DemoTenants); err != nil {
		return nil, err
	}
	return repo, nil
}

// ProvideRedisClientOptional Redis 未启用或不可达时返回 nil，缓存、限流与事件随之关闭
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, tenant cache and rate limiting disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideTenantCache 提供租户缓存
func ProvideTenantCache(client *redis.Client) tenantapp.Cache {
	if client == nil {
		return nil
	}
	return redis.NewCache(client)
}

// ProvideRateLimiter 提供 Redis 限流器
func ProvideRateLimiter(client *redis.Client) *redis.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

// ProvideSwitchRateLimiter 租户切换限流器
func ProvideSwitchRateLimiter(l *redis.RateLimiter) tenantapp.RateLimiter {
	if l == nil {
		return nil
	}
	return l
}

// ProvideAPIRateLimiter 全局 API 限流器
func ProvideAPIRateLimiter(l *redis.RateLimiter) middleware.RateLimiter {
	if l == nil {
		return nil
	}
	return l
}

// ProvideEventPublisher 提供租户事件发布者
func ProvideEventPublisher(client *redis.Client, cfg *config.Config) tenantapp.EventPublisher {
	if client == nil || !cfg.Messaging.RedisStream.Enabled {
		return nil
	}
	return messaging.NewProducer(client.Redis(),
		messaging.Stream(cfg.Messaging.RedisStream.Stream),
		int64(cfg.Messaging.RedisStream.MaxLen))
}

// ProvideDirectory 提供租户目录
func ProvideDirectory(repo repository.TenantRepository, cache tenantapp.Cache, cfg *config.Config) *tenantapp.Directory {
	return tenantapp.NewDirectory(repo, cache, redis.TenantKey, cfg.Tenant.Directory.CacheTTL)
}

// ProvideSwitchService 提供租户切换服务
func ProvideSwitchService(dir *tenantapp.Directory, limiter tenantapp.RateLimiter, pub tenantapp.EventPublisher, cfg *config.Config) *tenantapp.SwitchService {
	return tenantapp.NewSwitchService(dir, limiter, pub, tenantapp.SwitchConfig{
		VerifyOnSwitch:   cfg.Tenant.Directory.VerifyOnSwitch,
		RateLimitEnabled: cfg.Tenant.SwitchRateLimit.Enabled,
		RateLimit:        cfg.Tenant.SwitchRateLimit.Requests,
		RateWindow:       cfg.Tenant.SwitchRateLimit.Window,
	})
}

// ProvideHealthHandler 提供健康检查处理器，未启用的依赖记为 disabled
func ProvideHealthHandler(cfg *config.Config, pg *postgres.Client, rc *redis.Client) *handler.HealthHandler {
	checkers := map[string]handler.HealthChecker{
		"postgres": nil,
		"redis":    nil,
	}
	if pg != nil {
		checkers["postgres"] = pg
	}
	if rc != nil {
		checkers["redis"] = rc
	}
	return handler.NewHealthHandler(cfg.App.Version, checkers)
}

// ProvideLayoutHandler 提供根布局处理器
func ProvideLayoutHandler(cfg *config.Config) *handler.LayoutHandler {
	return handler.NewLayoutHandler(cfg.App.Title)
}
