package asset

import (
	"context"
	"log/slog"
)

// ObjectStore is the minimal interface the lifecycle requires from the
// media backend. Delete must be idempotent: removing a missing object
// succeeds.
type ObjectStore interface {
	Delete(ctx context.Context, key string) error
}

// Lifecycle garbage-collects uploaded media in lockstep with record writes.
// Callers invoke Replace only after the record update holding the new
// reference has been committed; a delete failure then leaves at worst an
// orphaned object, never a record pointing at a missing file.
type Lifecycle struct {
	store        ObjectStore
	placeholders map[string]struct{}
}

// NewLifecycle creates a Lifecycle. placeholders are shared assets
// (e.g. the default profile picture) that are never deleted.
func NewLifecycle(store ObjectStore, placeholders ...string) *Lifecycle {
	p := make(map[string]struct{}, len(placeholders))
	for _, key := range placeholders {
		p[key] = struct{}{}
	}
	return &Lifecycle{store: store, placeholders: p}
}

// Replace schedules deletion of oldRef after it has been superseded by
// newRef in the owning record. No-ops when oldRef is empty, unchanged, or a
// shared placeholder.
func (l *Lifecycle) Replace(ctx context.Context, oldRef, newRef string) {
	if oldRef == "" || oldRef == newRef || l.isPlaceholder(oldRef) {
		return
	}
	if err := l.store.Delete(ctx, oldRef); err != nil {
		slog.Warn("failed to delete replaced asset", "key", oldRef, "err", err)
	}
}

// DeleteAll removes every referenced asset after the owning record has been
// deleted. Placeholders and empty references are skipped.
func (l *Lifecycle) DeleteAll(ctx context.Context, refs ...string) {
	for _, ref := range refs {
		if ref == "" || l.isPlaceholder(ref) {
			continue
		}
		if err := l.store.Delete(ctx, ref); err != nil {
			slog.Warn("failed to delete asset", "key", ref, "err", err)
		}
	}
}

func (l *Lifecycle) isPlaceholder(ref string) bool {
	_, ok := l.placeholders[ref]
	return ok
}
