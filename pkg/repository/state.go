package repository

import (
	"context"
	"errors"
	"time"

	"github.com/medreza/honcho-coupon-card/pkg/database"
	"github.com/sirupsen/logrus"
)

const defaultTimeout = 2 * time.Second

// overlayEntry is a write the backend refused. removed marks a failed delete.
type overlayEntry struct {
	value   string
	removed bool
}

// StateRepository is the best-effort store the card persists through. Backend
// failures never reach callers: reads degrade to "absent" and failed writes
// are remembered in memory so the running card keeps the intended state.
// It is not safe for concurrent use; the card only calls it from its loop.
type StateRepository struct {
	kv        database.KV
	namespace string
	timeout   time.Duration
	overlay   map[string]overlayEntry
}

func NewStateRepository(kv database.KV, namespace string) *StateRepository {
	return &StateRepository{
		kv:        kv,
		namespace: namespace,
		timeout:   defaultTimeout,
		overlay:   make(map[string]overlayEntry),
	}
}

func (r *StateRepository) key(k string) string {
	if r.namespace == "" {
		return k
	}
	return r.namespace + ":" + k
}

func (r *StateRepository) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

// Get returns the value stored under key and whether it is present.
func (r *StateRepository) Get(key string) (string, bool) {
	if e, ok := r.overlay[key]; ok {
		if e.removed {
			return "", false
		}
		return e.value, true
	}

	ctx, cancel := r.ctx()
	defer cancel()

	value, err := r.kv.Get(ctx, r.key(key))
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			logrus.WithField("key", key).WithError(err).Warn("Get: Read failed, treating key as absent")
		}
		return "", false
	}
	return value, true
}

// Has reports whether key is present.
func (r *StateRepository) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

func (r *StateRepository) Set(key, value string) {
	ctx, cancel := r.ctx()
	defer cancel()

	if err := r.kv.Set(ctx, r.key(key), value); err != nil {
		logrus.WithField("key", key).WithError(err).Warn("Set: Write failed, keeping value in memory")
		r.overlay[key] = overlayEntry{value: value}
		return
	}
	delete(r.overlay, key)
}

func (r *StateRepository) Remove(key string) {
	ctx, cancel := r.ctx()
	defer cancel()

	if err := r.kv.Delete(ctx, r.key(key)); err != nil {
		logrus.WithField("key", key).WithError(err).Warn("Remove: Delete failed, hiding key in memory")
		r.overlay[key] = overlayEntry{removed: true}
		return
	}
	delete(r.overlay, key)
}
