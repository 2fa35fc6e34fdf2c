package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"orchestrai-web/pkg/metrics"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	stream Stream
	maxLen int64
}

// NewProducer 创建消息生产者，stream 为空时使用租户切换流
func NewProducer(client *redis.Client, stream Stream, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	if stream == "" {
		stream = StreamTenantSwitch
	}
	return &Producer{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

// Stream 返回生产者写入的流
func (p *Producer) Stream() Stream {
	return p.stream
}

// Publish 发布消息到流
func (p *Producer) Publish(ctx context.Context, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(p.stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(p.stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		metrics.TenantEventsPublished.WithLabelValues(msg.Type, "error").Inc()
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	metrics.TenantEventsPublished.WithLabelValues(msg.Type, "ok").Inc()
	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishTenantSwitched 发布租户切换事件
func (p *Producer) PublishTenantSwitched(ctx context.Context, evt *TenantSwitchedEvent) (string, error) {
	msg, err := NewMessage("", TypeTenantSwitched, evt.TenantID, evt)
	if err != nil {
		return "", err
	}

	if evt.RequestID != "" {
		msg.SetMetadata("request_id", evt.RequestID)
	}
	if evt.TraceID != "" {
		msg.SetMetadata("trace_id", evt.TraceID)
	}
	msg.SetMetadata("previous_tenant_id", evt.PreviousTenantID)

	return p.Publish(ctx, msg)
}
