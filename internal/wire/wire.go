//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"orchestrai-web/internal/config"
	"orchestrai-web/internal/domain/repository"
	"orchestrai-web/internal/infrastructure/persistence/postgres"
	"orchestrai-web/internal/interfaces/http/handler"
	"orchestrai-web/internal/interfaces/http/router"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		StorageSet,
		RedisSet,
		MessagingSet,
		TenancySet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeDirectoryOnly 初始化 PostgreSQL 租户目录与可选的 Redis 缓存（用于 bootstrap）
func InitializeDirectoryOnly(ctx context.Context, cfg *config.Config) (*DirectoryLayer, func(), error) {
	wire.Build(
		ProvidePostgresClient,
		postgres.NewTenantRepository,
		wire.Bind(new(repository.TenantRepository), new(*postgres.TenantRepository)),
		ProvideRedisClientOptional,
		ProvideTenantCache,
		ProvideDirectory,
		wire.Struct(new(DirectoryLayer), "*"),
	)
	return nil, nil, nil
}

// StorageSet 租户存储提供者集合
var StorageSet = wire.NewSet(
	ProvidePostgresClientOptional,
	ProvideTenantRepository,
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClientOptional,
	ProvideTenantCache,
	ProvideRateLimiter,
	ProvideSwitchRateLimiter,
	ProvideAPIRateLimiter,
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideEventPublisher,
)

// TenancySet 租户应用服务集合
var TenancySet = wire.NewSet(
	ProvideDirectory,
	ProvideSwitchService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	ProvideLayoutHandler,
	handler.NewSessionHandler,
	handler.NewTenantHandler,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)
