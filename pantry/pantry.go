package pantry

import (
	"context"
	"strings"
)

// Item is a pantry entry. Name is normalized and doubles as the storage key.
type Item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SearchResult is the outcome of a lookup against a list snapshot.
type SearchResult struct {
	Found bool   `json:"found"`
	Item  *Item  `json:"item,omitempty"`
	Query string `json:"query"`
}

// Change operations emitted after a successful write.
const (
	OpAdded   = "added"
	OpRemoved = "removed"
	OpDeleted = "deleted"
)

// Change describes a single write to the collection. Count is the count after
// the write, zero for OpDeleted.
type Change struct {
	Op    string `json:"op"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Notifier receives changes after they have been persisted.
type Notifier interface {
	Notify(ctx context.Context, change Change) error
}

// Normalize trims surrounding whitespace and lower-cases name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FindByName looks name up in a list snapshot. It never touches the store, so
// the answer reflects the last refresh.
func FindByName(items []Item, name string) (Item, bool) {
	want := Normalize(name)
	for _, it := range items {
		if it.Name == want {
			return it, true
		}
	}
	return Item{}, false
}

// Search wraps FindByName into a SearchResult for display.
func Search(items []Item, query string) SearchResult {
	it, ok := FindByName(items, query)
	if !ok {
		return SearchResult{Found: false, Query: query}
	}
	return SearchResult{Found: true, Item: &it, Query: query}
}
