package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type memDoc struct {
	seq  uint64
	data []byte
}

// Memory is a process-local Store for development and tests.
type Memory struct {
	mu    sync.RWMutex
	seq   uint64
	colls map[string]map[string]memDoc
}

func NewMemory() *Memory {
	return &Memory{colls: make(map[string]map[string]memDoc)}
}

func (m *Memory) Create(ctx context.Context, collection string, doc any) (string, error) {
	data, err := encodeJSON(doc)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.colls[collection]
	if !ok {
		coll = make(map[string]memDoc)
		m.colls[collection] = coll
	}
	id := uuid.NewString()
	m.seq++
	coll[id] = memDoc{seq: m.seq, data: data}
	return id, nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	m.mu.RLock()
	d, ok := m.colls[collection][id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return newJSONSnapshot(id, d.data)
}

func (m *Memory) Replace(ctx context.Context, collection, id string, doc any) error {
	data, err := encodeJSON(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.colls[collection][id]
	if !ok {
		return ErrNotFound
	}
	d.data = data
	m.colls[collection][id] = d
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.colls[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.colls[collection], id)
	return nil
}

func (m *Memory) List(ctx context.Context, collection string, q Query) ([]Snapshot, error) {
	type entry struct {
		id string
		d  memDoc
	}

	m.mu.RLock()
	entries := make([]entry, 0, len(m.colls[collection]))
	for id, d := range m.colls[collection] {
		entries = append(entries, entry{id: id, d: d})
	}
	m.mu.RUnlock()

	// insertion order unless the query asks otherwise
	slices.SortFunc(entries, func(a, b entry) int { return cmp.Compare(a.d.seq, b.d.seq) })

	docs := make([]*jsonSnapshot, 0, len(entries))
	for _, e := range entries {
		s, err := newJSONSnapshot(e.id, e.d.data)
		if err != nil {
			return nil, err
		}
		ok, err := matches(s, q.Where)
		if err != nil {
			return nil, err
		}
		if ok {
			docs = append(docs, s)
		}
	}

	return toSnapshots(applyQuery(docs, q)), nil
}

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Close() error { return nil }

// Len reports the number of documents in a collection.
func (m *Memory) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.colls[collection])
}
