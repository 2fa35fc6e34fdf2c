package tenant

import (
	"context"
	"time"

	"orchestrai-web/internal/infrastructure/messaging"
	"orchestrai-web/pkg/errors"
	"orchestrai-web/pkg/logger"
	"orchestrai-web/pkg/metrics"
	"orchestrai-web/pkg/tenancy"
	"orchestrai-web/pkg/tracer"

	"go.opentelemetry.io/otel/attribute"
)

// RateLimiter 限流器
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// EventPublisher 租户事件发布
type EventPublisher interface {
	PublishTenantSwitched(ctx context.Context, evt *messaging.TenantSwitchedEvent) (string, error)
}

// SwitchConfig 切换配置
type SwitchConfig struct {
	VerifyOnSwitch   bool
	RateLimitEnabled bool
	RateLimit        int
	RateWindow       time.Duration
}

// SwitchRequest 切换请求
type SwitchRequest struct {
	TenantID  string
	RequestID string
	TraceID   string
	ClientIP  string
	UserAgent string
}

// SwitchResult 切换结果
type SwitchResult struct {
	TenantID         string
	PreviousTenantID string
	Changed          bool
	// PersistErr 非空表示 Cookie 未能写回，内存值已更新
	PersistErr error
}

// SwitchService 会话租户切换
type SwitchService struct {
	directory *Directory
	limiter   RateLimiter
	publisher EventPublisher
	cfg       SwitchConfig
}

// NewSwitchService 创建切换服务，limiter 与 publisher 可为 nil
func NewSwitchService(directory *Directory, limiter RateLimiter, publisher EventPublisher, cfg SwitchConfig) *SwitchService {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Minute
	}
	return &SwitchService{
		directory: directory,
		limiter:   limiter,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Switch 通过请求绑定写入新的租户 ID
func (s *SwitchService) Switch(ctx context.Context, b *tenancy.Binding, req SwitchRequest) (*SwitchResult, error) {
	if b == nil {
		return nil, errors.ErrInternalError.WithDetail("tenant binding missing from request")
	}

	ctx, span := tracer.Start(ctx, "tenant.Switch")
	defer span.End()

	previous := b.Read()
	span.SetAttributes(
		attribute.String("tenant.previous", previous),
		attribute.String("tenant.requested", req.TenantID),
	)
	result := &SwitchResult{TenantID: previous, PreviousTenantID: previous}

	if req.TenantID == previous {
		metrics.TenantSwitchesTotal.WithLabelValues("noop").Inc()
		return result, nil
	}

	if err := s.checkRateLimit(ctx, req); err != nil {
		metrics.TenantSwitchesTotal.WithLabelValues("rate_limited").Inc()
		return nil, err
	}

	if req.TenantID != "" && s.cfg.VerifyOnSwitch && s.directory != nil {
		if _, err := s.directory.Verify(ctx, req.TenantID); err != nil {
			metrics.TenantSwitchesTotal.WithLabelValues("rejected").Inc()
			return nil, err
		}
	}

	result.Changed = b.Write(req.TenantID)
	result.TenantID = b.Read()
	if !result.Changed {
		metrics.TenantSwitchesTotal.WithLabelValues("noop").Inc()
		return result, nil
	}
	metrics.TenantSwitchesTotal.WithLabelValues("changed").Inc()

	if err := b.PersistErr(); err != nil {
		result.PersistErr = err
		metrics.TenantPersistFailuresTotal.Inc()
		logger.Warn(ctx, "tenant cookie not persisted", "tenant_id", req.TenantID, "error", err.Error())
	}

	s.publish(ctx, req, result)
	return result, nil
}

// checkRateLimit 按客户端 IP 限流，IP 未知时共用 anonymous 键
func (s *SwitchService) checkRateLimit(ctx context.Context, req SwitchRequest) error {
	if !s.cfg.RateLimitEnabled || s.limiter == nil {
		return nil
	}

	scope := req.ClientIP
	if scope == "" {
		scope = "anonymous"
	}
	allowed, err := s.limiter.Allow(ctx, "ratelimit:tenant_switch:"+scope, s.cfg.RateLimit, s.cfg.RateWindow)
	if err != nil {
		// 限流器故障时放行
		logger.Error(ctx, "tenant switch rate limiter failed", err)
		return nil
	}
	if !allowed {
		return errors.ErrTooManyRequests.WithDetail("too many tenant switches")
	}
	return nil
}

func (s *SwitchService) publish(ctx context.Context, req SwitchRequest, result *SwitchResult) {
	if s.publisher == nil {
		return
	}

	evt := &messaging.TenantSwitchedEvent{
		PreviousTenantID: result.PreviousTenantID,
		TenantID:         result.TenantID,
		RequestID:        req.RequestID,
		TraceID:          req.TraceID,
		ClientIP:         req.ClientIP,
		UserAgent:        req.UserAgent,
		Persisted:        result.PersistErr == nil,
		SwitchedAt:       time.Now().UTC(),
	}
	if _, err := s.publisher.PublishTenantSwitched(ctx, evt); err != nil {
		logger.Error(ctx, "failed to publish tenant switch event", err, "tenant_id", result.TenantID)
	}
}
