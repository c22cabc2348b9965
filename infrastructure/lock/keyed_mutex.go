package lock

import (
	"context"
	"sync"
)

// KeyedMutex is an in-process lock per key. Each key owns a channel with
// capacity one; holding the lock means having sent into it. A key's entry
// lives only while someone holds or waits for it.
type KeyedMutex struct {
	mu   sync.Mutex
	keys map[string]*keyEntry
}

type keyEntry struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{keys: make(map[string]*keyEntry)}
}

func (m *KeyedMutex) acquire(key string) *keyEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.keys[key]
	if !ok {
		e = &keyEntry{ch: make(chan struct{}, 1)}
		m.keys[key] = e
	}
	e.refs++
	return e
}

func (m *KeyedMutex) drop(key string, e *keyEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.keys, key)
	}
}

func (m *KeyedMutex) TryLock(_ context.Context, key string) (func(), bool, error) {
	e := m.acquire(key)
	select {
	case e.ch <- struct{}{}:
		return m.releaser(key, e), true, nil
	default:
		m.drop(key, e)
		return nil, false, nil
	}
}

func (m *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	e := m.acquire(key)
	select {
	case e.ch <- struct{}{}:
		return m.releaser(key, e), nil
	case <-ctx.Done():
		m.drop(key, e)
		return nil, ctx.Err()
	}
}

func (m *KeyedMutex) releaser(key string, e *keyEntry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.drop(key, e)
		})
	}
}
