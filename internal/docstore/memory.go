package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type memoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	order []string
	docs  map[string]Document
}

// NewMemoryStore returns a process-local Store. Documents are deep-copied
// through JSON on the way in and out so callers never share maps.
func NewMemoryStore() Store {
	return &memoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *memoryStore) List(ctx context.Context, collection string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return []Record{}, nil
	}
	records := make([]Record, 0, len(c.order))
	for _, id := range c.order {
		doc, err := cloneDocument(c.docs[id])
		if err != nil {
			return nil, err
		}
		records = append(records, Record{ID: id, Data: doc})
	}
	return records, nil
}

func (s *memoryStore) Get(ctx context.Context, collection, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return Record{}, ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	clone, err := cloneDocument(doc)
	if err != nil {
		return Record{}, err
	}
	return Record{ID: id, Data: clone}, nil
}

func (s *memoryStore) Set(ctx context.Context, collection, id string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clone, err := cloneDocument(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = clone
	return nil
}

func (s *memoryStore) Update(ctx context.Context, collection, id string, patch Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clone, err := cloneDocument(patch)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range clone {
		doc[k] = v
	}
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memoryStore) Close() error { return nil }

func (s *memoryStore) collection(name string) *memoryCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{docs: make(map[string]Document)}
		s.collections[name] = c
	}
	return c
}

func cloneDocument(doc Document) (Document, error) {
	if doc == nil {
		return Document{}, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return out, nil
}
