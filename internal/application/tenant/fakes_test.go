package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"orchestrai-web/internal/infrastructure/messaging"
)

type fakeCache struct {
	mu    sync.Mutex
	items map[string][]byte
	err   error
	loads int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string][]byte)}
}

func (c *fakeCache) GetOrLoadSafe(_ context.Context, key string, _ time.Duration, loader func() (any, error)) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	if v, ok := c.items[key]; ok {
		return v, nil
	}
	c.loads++
	data, err := loader()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	c.items[key] = raw
	return raw, nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *fakeLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

type fakePublisher struct {
	events []*messaging.TenantSwitchedEvent
	err    error
}

func (p *fakePublisher) PublishTenantSwitched(_ context.Context, evt *messaging.TenantSwitchedEvent) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.events = append(p.events, evt)
	return "1-0", nil
}

var errBoom = errors.New("boom")
