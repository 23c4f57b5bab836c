package database

import (
	"context"
	"errors"
	"sync"
)

// ErrUnavailable is returned by Memory while a failure switch is on.
var ErrUnavailable = errors.New("storage unavailable")

// Memory is an in-process KV. The failure switches simulate disabled or full
// storage.
type Memory struct {
	mu         sync.Mutex
	data       map[string]string
	failReads  bool
	failWrites bool
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// FailReads makes every Get return ErrUnavailable.
func (m *Memory) FailReads(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failReads = fail
}

// FailWrites makes every Set and Delete return ErrUnavailable.
func (m *Memory) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

// Keys returns the number of stored keys.
func (m *Memory) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return "", ErrUnavailable
	}
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return ErrUnavailable
	}
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return ErrUnavailable
	}
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error { return nil }
