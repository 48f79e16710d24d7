package store

import (
	"context"
	"sync"
)

// Memory mantém os valores em um map; usado em testes e STORE_DRIVER=memory
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory { return &Memory{data: map[string]string{}} }

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}
