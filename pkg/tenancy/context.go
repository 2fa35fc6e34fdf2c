package tenancy

import "context"

type bindingKey struct{}

// WithBinding 将 Binding 放入 context，供下游处理器显式获取
func WithBinding(ctx context.Context, b *Binding) context.Context {
	return context.WithValue(ctx, bindingKey{}, b)
}

// BindingFrom 从 context 获取 Binding
func BindingFrom(ctx context.Context) (*Binding, bool) {
	b, ok := ctx.Value(bindingKey{}).(*Binding)
	return b, ok && b != nil
}

// TenantID 返回 context 中 Binding 的当前租户 ID，没有 Binding 时为空字符串
func TenantID(ctx context.Context) string {
	if b, ok := BindingFrom(ctx); ok {
		return b.Read()
	}
	return ""
}
