package tenancy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindingContext(t *testing.T) {
	ctx := context.Background()
	_, ok := BindingFrom(ctx)
	assert.False(t, ok)
	assert.Empty(t, TenantID(ctx))

	b := NewBinding("acme", nil)
	ctx = WithBinding(ctx, b)

	got, ok := BindingFrom(ctx)
	assert.True(t, ok)
	assert.Same(t, b, got)

	b.Write("globex")
	assert.Equal(t, "globex", TenantID(ctx))
}

func TestNilBindingInContext(t *testing.T) {
	ctx := WithBinding(context.Background(), nil)
	_, ok := BindingFrom(ctx)
	assert.False(t, ok)
}
