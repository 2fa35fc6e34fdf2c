package tenancy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPersister struct {
	calls []string
	err   error
}

func (p *recordingPersister) Persist(id string) error {
	p.calls = append(p.calls, id)
	return p.err
}

func TestBindingWriteThenRead(t *testing.T) {
	for _, id := range []string{"acme", "", "globex", "tenant with spaces", "ü-tenant"} {
		t.Run(id, func(t *testing.T) {
			p := &recordingPersister{}
			b := NewBinding("initial", p)

			b.Write(id)
			assert.Equal(t, id, b.Read())
		})
	}
}

func TestBindingWriteSameValueIsNoop(t *testing.T) {
	p := &recordingPersister{}
	b := NewBinding("acme", p)

	var notified int
	b.Subscribe(func(string, string) { notified++ })

	changed := b.Write("acme")

	assert.False(t, changed)
	assert.Empty(t, p.calls)
	assert.Zero(t, notified)
	assert.Equal(t, "acme", b.Read())
	assert.False(t, b.Pending())
}

func TestBindingWritePersistsBeforeReplacing(t *testing.T) {
	b := NewBinding("acme", nil)
	var seen string
	b.persist = PersisterFunc(func(id string) error {
		seen = b.Read()
		return nil
	})

	require.True(t, b.Write("globex"))
	assert.Equal(t, "acme", seen)
	assert.Equal(t, "globex", b.Read())
	assert.NoError(t, b.PersistErr())
}

func TestBindingPersistFailureStillUpdatesMemory(t *testing.T) {
	blocked := errors.New("cookies disabled")
	p := &recordingPersister{err: blocked}
	b := NewBinding("acme", p)

	require.True(t, b.Write("globex"))

	// 内存值与持久化值此时不一致
	assert.Equal(t, "globex", b.Read())
	assert.ErrorIs(t, b.PersistErr(), blocked)
	assert.Equal(t, []string{"globex"}, p.calls)

	p.err = nil
	require.True(t, b.Write("initech"))
	assert.NoError(t, b.PersistErr())
}

func TestBindingWithoutPersister(t *testing.T) {
	b := NewBinding("", nil)

	require.True(t, b.Write("acme"))
	assert.Equal(t, "acme", b.Read())
	assert.ErrorIs(t, b.PersistErr(), ErrPersistUnavailable)
}

func TestBindingReconcile(t *testing.T) {
	t.Run("converges to differing server value", func(t *testing.T) {
		b := NewBinding("a", &recordingPersister{})
		assert.True(t, b.Reconcile("b"))
		assert.Equal(t, "b", b.Read())
	})

	t.Run("same value does not update", func(t *testing.T) {
		b := NewBinding("a", &recordingPersister{})
		var notified int
		b.Subscribe(func(string, string) { notified++ })

		assert.False(t, b.Reconcile("a"))
		assert.Equal(t, "a", b.Read())
		assert.Zero(t, notified)
	})

	t.Run("empty server value is applied", func(t *testing.T) {
		b := NewBinding("a", &recordingPersister{})
		assert.True(t, b.Reconcile(""))
		assert.Equal(t, "", b.Read())
	})

	t.Run("never persists", func(t *testing.T) {
		p := &recordingPersister{}
		b := NewBinding("a", p)
		b.Reconcile("b")
		assert.Empty(t, p.calls)
	})
}

func TestBindingReconcilePolicy(t *testing.T) {
	t.Run("server wins over pending local write", func(t *testing.T) {
		b := NewBinding("acme", &recordingPersister{})
		b.Write("globex")
		require.True(t, b.Pending())

		assert.True(t, b.Reconcile("acme"))
		assert.Equal(t, "acme", b.Read())
		assert.False(t, b.Pending())
	})

	t.Run("local keeps pending write", func(t *testing.T) {
		b := NewBinding("acme", &recordingPersister{}, WithPolicy(PreferLocal))
		b.Write("globex")

		assert.False(t, b.Reconcile("acme"))
		assert.Equal(t, "globex", b.Read())
		assert.True(t, b.Pending())
	})

	t.Run("local clears pending once echoed", func(t *testing.T) {
		b := NewBinding("acme", &recordingPersister{}, WithPolicy(PreferLocal))
		b.Write("globex")

		assert.False(t, b.Reconcile("globex"))
		assert.False(t, b.Pending())

		assert.True(t, b.Reconcile("initech"))
		assert.Equal(t, "initech", b.Read())
	})

	t.Run("local without pending follows server", func(t *testing.T) {
		b := NewBinding("acme", &recordingPersister{}, WithPolicy(PreferLocal))
		assert.True(t, b.Reconcile("globex"))
		assert.Equal(t, "globex", b.Read())
	})
}

func TestBindingSubscribe(t *testing.T) {
	b := NewBinding("acme", &recordingPersister{})

	type change struct{ old, updated string }
	var got []change
	cancel := b.Subscribe(func(old, updated string) {
		got = append(got, change{old, updated})
	})

	b.Write("globex")
	b.Reconcile("initech")
	cancel()
	b.Write("acme")

	assert.Equal(t, []change{{"acme", "globex"}, {"globex", "initech"}}, got)
}

func TestParseReconcilePolicy(t *testing.T) {
	assert.Equal(t, PreferLocal, ParseReconcilePolicy("local"))
	assert.Equal(t, PreferLocal, ParseReconcilePolicy(" Prefer_Local "))
	assert.Equal(t, PreferServer, ParseReconcilePolicy("server"))
	assert.Equal(t, PreferServer, ParseReconcilePolicy(""))
	assert.Equal(t, "local", PreferLocal.String())
	assert.Equal(t, "server", PreferServer.String())
}
