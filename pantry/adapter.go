package pantry

import (
	"context"
	"fmt"
	"log/slog"

	"pantryapp/storage"
)

// Adapter maps pantry operations onto a document collection keyed by
// normalized item name. Read-then-write sequences are not atomic.
type Adapter struct {
	collection storage.Collection
	notifiers  []Notifier
}

// NewAdapter initializes an adapter over an already constructed collection.
func NewAdapter(c storage.Collection, notifiers ...Notifier) *Adapter {
	return &Adapter{collection: c, notifiers: notifiers}
}

// ListAll fetches every record in the collection.
func (a *Adapter) ListAll(ctx context.Context) ([]Item, error) {
	docs, err := a.collection.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pantry: %w", err)
	}
	items := make([]Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, Item{Name: d.ID, Count: d.Count})
	}
	return items, nil
}

// AddOne increments the count for name, creating the record at 1. Blank names
// are ignored without touching the store.
func (a *Adapter) AddOne(ctx context.Context, name string) error {
	_, err := a.addOne(ctx, name)
	return err
}

// addOne reports whether the store was written.
func (a *Adapter) addOne(ctx context.Context, name string) (bool, error) {
	key := Normalize(name)
	if key == "" {
		return false, nil
	}

	doc, ok, err := a.collection.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %q: %w", key, err)
	}
	count := 1
	if ok {
		count = doc.Count + 1
	}
	if err := a.collection.Set(ctx, storage.Document{ID: key, Count: count}); err != nil {
		return false, fmt.Errorf("write %q: %w", key, err)
	}

	slog.Debug("STORE: Item added", "name", key, "count", count)
	a.notify(ctx, Change{Op: OpAdded, Name: key, Count: count})
	return true, nil
}

// RemoveOne decrements the count for name, deleting the record instead of
// storing zero. Absent names are a no-op.
func (a *Adapter) RemoveOne(ctx context.Context, name string) error {
	_, err := a.removeOne(ctx, name)
	return err
}

// removeOne reports whether the store was written.
func (a *Adapter) removeOne(ctx context.Context, name string) (bool, error) {
	key := Normalize(name)
	if key == "" {
		return false, nil
	}

	doc, ok, err := a.collection.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %q: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	if doc.Count <= 1 {
		if err := a.collection.Delete(ctx, key); err != nil {
			return false, fmt.Errorf("delete %q: %w", key, err)
		}
		slog.Debug("STORE: Item deleted", "name", key)
		a.notify(ctx, Change{Op: OpDeleted, Name: key})
		return true, nil
	}

	count := doc.Count - 1
	if err := a.collection.Set(ctx, storage.Document{ID: key, Count: count}); err != nil {
		return false, fmt.Errorf("write %q: %w", key, err)
	}
	slog.Debug("STORE: Item removed", "name", key, "count", count)
	a.notify(ctx, Change{Op: OpRemoved, Name: key, Count: count})
	return true, nil
}

// notify fans a change out to every notifier; failures are logged only.
func (a *Adapter) notify(ctx context.Context, change Change) {
	for _, n := range a.notifiers {
		if err := n.Notify(ctx, change); err != nil {
			slog.Error("STORE: Failed to deliver change notification", "error", err, "op", change.Op, "name", change.Name)
		}
	}
}
