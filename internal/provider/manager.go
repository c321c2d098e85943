package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultAvailabilityTTL = 30 * time.Second

// Status is the availability of one registered provider.
type Status struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Primary   bool   `json:"primary"`
}

// Manager selects a backend for each call: the configured platform first,
// then the fallback order, then any other registered provider. The first
// available candidate serves the call; its errors are returned as-is.
type Manager struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
	platform  string
	fallback  []string

	availability *ttlcache.Cache[string, bool]
	logger       *zap.Logger
}

type ManagerOption func(*Manager)

func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithPlatform(name string) ManagerOption {
	return func(m *Manager) { m.platform = normalizeName(name) }
}

func WithFallbackOrder(names ...string) ManagerOption {
	return func(m *Manager) {
		m.fallback = m.fallback[:0]
		for _, n := range names {
			m.fallback = append(m.fallback, normalizeName(n))
		}
	}
}

// WithAvailabilityTTL sets how long an availability probe result is reused.
func WithAvailabilityTTL(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.availability = newAvailabilityCache(d)
		}
	}
}

func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		providers:    make(map[string]Provider),
		availability: newAvailabilityCache(defaultAvailabilityTTL),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func newAvailabilityCache(ttl time.Duration) *ttlcache.Cache[string, bool] {
	return ttlcache.New[string, bool](
		ttlcache.WithTTL[string, bool](ttl),
		ttlcache.WithDisableTouchOnHit[string, bool](),
	)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds p, replacing any provider with the same name.
func (m *Manager) Register(p Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := normalizeName(p.Name())
	if _, ok := m.providers[name]; !ok {
		m.order = append(m.order, name)
	}
	m.providers[name] = p
	m.availability.Delete(name)
}

func (m *Manager) Provider(name string) (Provider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.providers[normalizeName(name)]
	return p, ok
}

// Candidates lists registered provider names in selection order.
func (m *Manager) Candidates() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool, len(m.order))
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		if _, ok := m.providers[name]; !ok {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	add(m.platform)
	for _, n := range m.fallback {
		add(n)
	}
	for _, n := range m.order {
		add(n)
	}
	return out
}

// Select returns the first available candidate.
func (m *Manager) Select(ctx context.Context) (Provider, error) {
	for _, name := range m.Candidates() {
		p, ok := m.Provider(name)
		if !ok {
			continue
		}
		if m.isAvailable(ctx, name, p) {
			m.logger.Debug("selected provider", zap.String("provider", name))
			return p, nil
		}
		m.logger.Debug("provider unavailable", zap.String("provider", name))
	}
	return nil, ErrNoProvider
}

func (m *Manager) isAvailable(ctx context.Context, name string, p Provider) bool {
	if item := m.availability.Get(name); item != nil {
		return item.Value()
	}
	ok := p.IsAvailable(ctx)
	m.availability.Set(name, ok, ttlcache.DefaultTTL)
	return ok
}

func (m *Manager) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	p, err := m.Select(ctx)
	if err != nil {
		return "", err
	}
	return p.GenerateText(ctx, prompt, opts)
}

func (m *Manager) GenerateTextStream(ctx context.Context, prompt string, opts GenerateOptions) (<-chan StreamChunk, error) {
	p, err := m.Select(ctx)
	if err != nil {
		return nil, err
	}
	return p.GenerateTextStream(ctx, prompt, opts)
}

func (m *Manager) Complete(ctx context.Context, systemPrompt, userPrompt string, opts GenerateOptions) (string, error) {
	p, err := m.Select(ctx)
	if err != nil {
		return "", err
	}
	return p.Complete(ctx, systemPrompt, userPrompt, opts)
}

// Status probes every registered provider concurrently, bypassing and then
// refreshing the availability cache. Results follow Candidates order.
func (m *Manager) Status(ctx context.Context) ([]Status, error) {
	names := m.Candidates()
	out := make([]Status, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		p, ok := m.Provider(name)
		if !ok {
			return nil, fmt.Errorf("provider %q disappeared during status check", name)
		}
		g.Go(func() error {
			ok := p.IsAvailable(gctx)
			m.availability.Set(name, ok, ttlcache.DefaultTTL)
			out[i] = Status{Name: name, Available: ok, Primary: i == 0}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
