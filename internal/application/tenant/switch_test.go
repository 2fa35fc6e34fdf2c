package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orchestrai-web/pkg/errors"
	"orchestrai-web/pkg/tenancy"
)

type recordingPersister struct {
	calls []string
	err   error
}

func (p *recordingPersister) Persist(id string) error {
	p.calls = append(p.calls, id)
	return p.err
}

func newSwitchService(t *testing.T, limiter RateLimiter, pub EventPublisher, cfg SwitchConfig) *SwitchService {
	t.Helper()
	repo, _, _ := seedRepo(t)
	return NewSwitchService(NewDirectory(repo, nil, nil, 0), limiter, pub, cfg)
}

func TestSwitch_ChangesAndPublishes(t *testing.T) {
	pub := &fakePublisher{}
	svc := newSwitchService(t, nil, pub, SwitchConfig{VerifyOnSwitch: true})
	p := &recordingPersister{}
	b := tenancy.NewBinding("acme", p)

	res, err := svc.Switch(context.Background(), b, SwitchRequest{TenantID: "globex", RequestID: "req-1"})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, "globex", res.TenantID)
	assert.Equal(t, "acme", res.PreviousTenantID)
	assert.Equal(t, "globex", b.Read())
	assert.Equal(t, []string{"globex"}, p.calls)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "acme", pub.events[0].PreviousTenantID)
	assert.Equal(t, "globex", pub.events[0].TenantID)
	assert.Equal(t, "req-1", pub.events[0].RequestID)
	assert.True(t, pub.events[0].Persisted)
}

func TestSwitch_SameValueIsNoop(t *testing.T) {
	pub := &fakePublisher{}
	limiter := &fakeLimiter{allowed: false}
	svc := newSwitchService(t, limiter, pub, SwitchConfig{RateLimitEnabled: true})
	p := &recordingPersister{}
	b := tenancy.NewBinding("acme", p)

	res, err := svc.Switch(context.Background(), b, SwitchRequest{TenantID: "acme"})
	require.NoError(t, err)

	assert.False(t, res.Changed)
	assert.Empty(t, p.calls)
	assert.Empty(t, pub.events)
	assert.Empty(t, limiter.keys)
}

func TestSwitch_UnknownTenantRejected(t *testing.T) {
	svc := newSwitchService(t, nil, nil, SwitchConfig{VerifyOnSwitch: true})
	p := &recordingPersister{}
	b := tenancy.NewBinding("acme", p)

	_, err := svc.Switch(context.Background(), b, SwitchRequest{TenantID: "initech"})
	assert.ErrorIs(t, err, errors.ErrTenantNotFound)
	assert.Equal(t, "acme", b.Read())
	assert.Empty(t, p.calls)
}

func TestSwitch_UnverifiedAllowsAnyID(t *testing.T) {
	svc := newSwitchService(t, nil, nil, SwitchConfig{})
	b := tenancy.NewBinding("", &recordingPersister{})

	res, err := svc.Switch(context.Background(), b, SwitchRequest{TenantID: "initech"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "initech", b.Read())
}

func TestSwitch_ClearToSentinelSkipsVerification(t *testing.T) {
	svc := newSwitchService(t, nil, nil, SwitchConfig{VerifyOnSwitch: true})
	p := &recordingPersister{}
	b := tenancy.NewBinding("acme", p)

	res, err := svc.Switch(context.Background(), b, SwitchRequest{TenantID: ""})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "", b.Read())
	assert.Equal(t, []string{""}, p.calls)
}

func TestSwitch_RateLimited(t *testing.T) {
	limiter := &fakeLimiter{allowed: false}
	svc := newSwitchService(t, limiter, nil, SwitchConfig{RateLimitEnabled: true})
	b := tenancy.NewBinding("acme", &recordingPersister{})

	_, err := svc.Switch(context.Background(), b, SwitchRequest{TenantID: "globex", ClientIP: "10.0.0.1"})
	assert.ErrorIs(t, err, errors.ErrTooManyRequests)
	assert.Equal(t, "acme", b.Read())
	assert.Equal(t, []string{"ratelimit:tenant_switch:10.0.0.1"}, limiter.keys)
}

func TestSwitch_RateLimitKeyedByClientIP(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}
	svc := newSwitchService(t, limiter, nil, SwitchConfig{RateLimitEnabled: true})
	ctx := context.Background()

	_, err := svc.Switch(ctx, tenancy.NewBinding("acme", nil), SwitchRequest{TenantID: "globex", ClientIP: "10.0.0.2"})
	require.NoError(t, err)
	_, err = svc.Switch(ctx, tenancy.NewBinding("globex", nil), SwitchRequest{TenantID: "acme", ClientIP: "10.0.0.2"})
	require.NoError(t, err)
	_, err = svc.Switch(ctx, tenancy.NewBinding("acme", nil), SwitchRequest{TenantID: ""})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ratelimit:tenant_switch:10.0.0.2",
		"ratelimit:tenant_switch:10.0.0.2",
		"ratelimit:tenant_switch:anonymous",
	}, limiter.keys)
}

func TestSwitch_LimiterFailureAllows(t *testing.T) {
	limiter := &fakeLimiter{err: errBoom}
	svc := newSwitchService(t, limiter, nil, SwitchConfig{RateLimitEnabled: true})
	b := tenancy.NewBinding("acme", &recordingPersister{})

	res, err := svc.Switch(context.Background(), b, SwitchRequest{TenantID: "globex"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
}

func TestSwitch_PersistFailureStillUpdates(t *testing.T) {
	pub := &fakePublisher{}
	svc := newSwitchService(t, nil, pub, SwitchConfig{})
	b := tenancy.NewBinding("acme", &recordingPersister{err: errBoom})

	res, err := svc.Switch(context.Background(), b, SwitchRequest{TenantID: "globex"})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.ErrorIs(t, res.PersistErr, errBoom)
	assert.Equal(t, "globex", b.Read())
	require.Len(t, pub.events, 1)
	assert.False(t, pub.events[0].Persisted)
}

func TestSwitch_PublishFailureIgnored(t *testing.T) {
	svc := newSwitchService(t, nil, &fakePublisher{err: errBoom}, SwitchConfig{})
	b := tenancy.NewBinding("acme", &recordingPersister{})

	res, err := svc.Switch(context.Background(), b, SwitchRequest{TenantID: "globex"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
}

func TestSwitch_NilBinding(t *testing.T) {
	svc := newSwitchService(t, nil, nil, SwitchConfig{})
	_, err := svc.Switch(context.Background(), nil, SwitchRequest{TenantID: "globex"})
	assert.ErrorIs(t, err, errors.ErrInternalError)
}
