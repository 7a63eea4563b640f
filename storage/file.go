package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileCollection keeps the whole collection in one JSON object file:
//
//	{"apple": {"count": 2}, "rice": {"count": 1}}
type FileCollection struct {
	FilePath string

	mu sync.Mutex
}

func NewFileCollection(filePath string) *FileCollection {
	return &FileCollection{FilePath: filePath}
}

func (f *FileCollection) Get(ctx context.Context, id string) (Document, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	docs, err := f.load()
	if err != nil {
		return Document{}, false, err
	}
	doc, ok := docs[id]
	if !ok {
		return Document{}, false, nil
	}
	doc.ID = id
	return doc, true, nil
}

func (f *FileCollection) Set(ctx context.Context, doc Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	docs, err := f.load()
	if err != nil {
		return err
	}
	docs[doc.ID] = Document{Count: doc.Count}
	return f.save(docs)
}

func (f *FileCollection) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	docs, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := docs[id]; !ok {
		return nil
	}
	delete(docs, id)
	return f.save(docs)
}

func (f *FileCollection) List(ctx context.Context) ([]Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	docs, err := f.load()
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(docs))
	for id, doc := range docs {
		doc.ID = id
		out = append(out, doc)
	}
	sortDocuments(out)
	return out, nil
}

// load reads the collection file; a missing file is an empty collection.
func (f *FileCollection) load() (map[string]Document, error) {
	b, err := os.ReadFile(f.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read collection file: %w", err)
	}
	docs := map[string]Document{}
	if len(b) == 0 {
		return docs, nil
	}
	if err := json.Unmarshal(b, &docs); err != nil {
		return nil, fmt.Errorf("decode collection file: %w", err)
	}
	return docs, nil
}

func (f *FileCollection) save(docs map[string]Document) error {
	b, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection file: %w", err)
	}
	if dir := filepath.Dir(f.FilePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create collection dir: %w", err)
		}
	}
	tmp := f.FilePath + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write collection file: %w", err)
	}
	if err := os.Rename(tmp, f.FilePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace collection file: %w", err)
	}
	return nil
}
