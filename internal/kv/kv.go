// Package kv is a namespaced key/value port. Keys are slash-separated,
// e.g. "project/<id>/prefs" or "idempotency/<actor>/<key>".
package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/taskup/internal/domain"
)

type Entry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// Store is last-write-wins per key. Get returns an error wrapping
// domain.ErrNotFound for missing keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Entry, error)
}

// Key joins parts with "/".
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]Entry{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, domain.NotFoundf("key %s", key)
	}
	return append([]byte(nil), e.Value...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = Entry{Key: key, Value: append([]byte(nil), value...), UpdatedAt: m.now().UTC()}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Entry
	for k, e := range m.entries {
		if strings.HasPrefix(k, prefix) {
			e.Value = append([]byte(nil), e.Value...)
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
