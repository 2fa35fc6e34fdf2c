package tenancy

import (
	"errors"
	"strings"
)

// ErrPersistUnavailable 当前运行环境无法写入 Cookie
var ErrPersistUnavailable = errors.New("tenancy: cookie persistence unavailable")

// Persister 将租户 ID 写回 Cookie
type Persister interface {
	Persist(tenantID string) error
}

// PersisterFunc 函数形式的 Persister
type PersisterFunc func(tenantID string) error

// Persist 实现 Persister
func (f PersisterFunc) Persist(tenantID string) error {
	return f(tenantID)
}

// ReconcilePolicy 服务端值与本地未确认写入冲突时的取舍策略
type ReconcilePolicy int

const (
	// PreferServer 服务端解析值总是覆盖本地值
	PreferServer ReconcilePolicy = iota
	// PreferLocal 本地写入未被服务端回显前，忽略不同的服务端值
	PreferLocal
)

// ParseReconcilePolicy 解析配置值，未知值返回 PreferServer
func ParseReconcilePolicy(v string) ReconcilePolicy {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "local", "prefer_local":
		return PreferLocal
	default:
		return PreferServer
	}
}

// String 返回策略名称
func (p ReconcilePolicy) String() string {
	if p == PreferLocal {
		return "local"
	}
	return "server"
}

// Option Binding 构造选项
type Option func(*Binding)

// WithPolicy 设置 Reconcile 策略
func WithPolicy(p ReconcilePolicy) Option {
	return func(b *Binding) {
		b.policy = p
	}
}

// Binding 当前会话持有的租户 ID 及其唯一写入口
//
// Binding 不做并发保护，由单个 goroutine（一次请求或一个客户端会话）独占。
type Binding struct {
	tenantID   string
	pending    bool
	persist    Persister
	policy     ReconcilePolicy
	persistErr error

	listeners map[int]func(old, updated string)
	nextID    int
}

// NewBinding 以服务端解析出的初始值创建 Binding
func NewBinding(initial string, p Persister, opts ...Option) *Binding {
	b := &Binding{
		tenantID: initial,
		persist:  p,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Read 返回当前租户 ID
func (b *Binding) Read() string {
	return b.tenantID
}

// Write 替换租户 ID 并写回 Cookie
// 与当前值相同时不做任何事并返回 false。写 Cookie 失败不会阻止内存值更新，
// 错误可通过 PersistErr 获取。
func (b *Binding) Write(id string) bool {
	if id == b.tenantID {
		return false
	}

	b.persistErr = nil
	if b.persist == nil {
		b.persistErr = ErrPersistUnavailable
	} else if err := b.persist.Persist(id); err != nil {
		b.persistErr = err
	}

	old := b.tenantID
	b.tenantID = id
	b.pending = true
	b.notify(old, id)
	return true
}

// Reconcile 用新的服务端解析值校正当前值，返回当前值是否被替换
// 不会写 Cookie：该值本身就来自 Cookie。
func (b *Binding) Reconcile(serverValue string) bool {
	if serverValue == b.tenantID {
		b.pending = false
		return false
	}
	if b.policy == PreferLocal && b.pending {
		return false
	}

	old := b.tenantID
	b.tenantID = serverValue
	b.pending = false
	b.notify(old, serverValue)
	return true
}

// Pending 是否存在尚未被服务端回显的本地写入
func (b *Binding) Pending() bool {
	return b.pending
}

// Policy 返回 Reconcile 策略
func (b *Binding) Policy() ReconcilePolicy {
	return b.policy
}

// PersistErr 返回最近一次写入时 Cookie 持久化的错误
func (b *Binding) PersistErr() error {
	return b.persistErr
}

// Subscribe 注册变更监听，仅在值实际改变时回调，返回取消函数
func (b *Binding) Subscribe(fn func(old, updated string)) func() {
	if b.listeners == nil {
		b.listeners = make(map[int]func(old, updated string))
	}
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	return func() {
		delete(b.listeners, id)
	}
}

func (b *Binding) notify(old, updated string) {
	for _, fn := range b.listeners {
		fn(old, updated)
	}
}
