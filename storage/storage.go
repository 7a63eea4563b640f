package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Document is a single record in a collection, keyed by ID and holding a count.
type Document struct {
	ID    string `json:"-"`
	Count int    `json:"count"`
}

// Collection is a key-value-per-document store addressed by document ID.
type Collection interface {
	Get(ctx context.Context, id string) (Document, bool, error)
	Set(ctx context.Context, doc Document) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Document, error)
}

// ErrUnavailable is returned by MemoryCollection when it has been configured to fail.
var ErrUnavailable = errors.New("collection unavailable")

// MemoryCollection is an in-process Collection, used for tests and the "memory" driver.
type MemoryCollection struct {
	mu   sync.Mutex
	docs map[string]int
	err  error

	// Writes counts Set and Delete calls so tests can assert on store mutations.
	Writes int
}

func NewMemoryCollection(docs ...Document) *MemoryCollection {
	m := &MemoryCollection{docs: make(map[string]int, len(docs))}
	for _, d := range docs {
		m.docs[d.ID] = d.Count
	}
	return m
}

// NewMemoryCollectionWithError returns a collection whose every call fails with ErrUnavailable.
func NewMemoryCollectionWithError() *MemoryCollection {
	return &MemoryCollection{docs: map[string]int{}, err: ErrUnavailable}
}

// Fail makes subsequent calls return err; nil restores normal behaviour.
func (m *MemoryCollection) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryCollection) Get(ctx context.Context, id string) (Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Document{}, false, m.err
	}
	count, ok := m.docs[id]
	if !ok {
		return Document{}, false, nil
	}
	return Document{ID: id, Count: count}, true, nil
}

func (m *MemoryCollection) Set(ctx context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.docs[doc.ID] = doc.Count
	m.Writes++
	return nil
}

func (m *MemoryCollection) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.docs, id)
	m.Writes++
	return nil
}

func (m *MemoryCollection) List(ctx context.Context) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	docs := make([]Document, 0, len(m.docs))
	for id, count := range m.docs {
		docs = append(docs, Document{ID: id, Count: count})
	}
	sortDocuments(docs)
	return docs, nil
}

// sortDocuments orders by ID, the order a document collection lists in by default.
func sortDocuments(docs []Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
}
