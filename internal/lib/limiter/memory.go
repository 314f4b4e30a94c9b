package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	idleClientTTL   = 5 * time.Minute
	cleanupInterval = time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory keeps one token bucket per key inside the process.
type Memory struct {
	rps   rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*client
	stop    chan struct{}
	once    sync.Once
}

func NewMemory(rps float64, burst int) *Memory {
	m := &Memory{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*client),
		stop:    make(chan struct{}),
	}
	go m.cleanup()
	return m
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(m.rps, m.burst)}
		m.clients[key] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow(), nil
}

func (m *Memory) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Memory) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			for key, c := range m.clients {
				if time.Since(c.lastSeen) > idleClientTTL {
					delete(m.clients, key)
				}
			}
			m.mu.Unlock()
		}
	}
}
