// Package messaging 提供基于 Redis Streams 的事件发布
package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// 事件类型
const (
	TypeTenantSwitched = "tenant.switched"
)

// Message 消息结构
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	TenantID  string            `json:"tenant_id"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage 创建新消息，id 为空时自动生成
func NewMessage(id, msgType, tenantID string, payload any) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
	}

	return &Message{
		ID:        id,
		Type:      msgType,
		TenantID:  tenantID,
		Payload:   payloadBytes,
		Metadata:  make(map[string]string),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key, value string) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}

// GetMetadata 获取元数据
func (m *Message) GetMetadata(key string) string {
	if m.Metadata == nil {
		return ""
	}
	return m.Metadata[key]
}

// UnmarshalPayload 解析消息载荷
func (m *Message) UnmarshalPayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// Stream 流定义
type Stream string

const (
	StreamTenantSwitch Stream = "orchestrai:tenant:switch"
)

// TenantSwitchedEvent 租户切换事件载荷
type TenantSwitchedEvent struct {
	PreviousTenantID string    `json:"previous_tenant_id"`
	TenantID         string    `json:"tenant_id"`
	RequestID        string    `json:"request_id,omitempty"`
	TraceID          string    `json:"trace_id,omitempty"`
	ClientIP         string    `json:"client_ip,omitempty"`
	UserAgent        string    `json:"user_agent,omitempty"`
	Persisted        bool      `json:"persisted"`
	SwitchedAt       time.Time `json:"switched_at"`
}
