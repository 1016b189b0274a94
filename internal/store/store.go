// Package store is the document access layer. Entities are persisted as
// documents in named collections and identified by an opaque generated ID;
// the backing database is one of Firestore, Postgres (jsonb) or memory.
package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("store: document not found")
	ErrNotProvisioned = errors.New("store: database not provisioned")
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

// Filter is an equality match on a top-level document field.
type Filter struct {
	Field string
	Value any
}

type Query struct {
	Where   []Filter
	OrderBy string
	Dir     Direction
	Limit   int
}

type Snapshot interface {
	ID() string
	DataTo(dst any) error
}

type Store interface {
	Create(ctx context.Context, collection string, doc any) (string, error)
	Get(ctx context.Context, collection, id string) (Snapshot, error)
	// Replace overwrites an existing document and fails with ErrNotFound
	// when the document does not exist.
	Replace(ctx context.Context, collection, id string, doc any) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string, q Query) ([]Snapshot, error)
	// Ping returns ErrNotProvisioned when the database exists in config but
	// has not been created yet.
	Ping(ctx context.Context) error
	Close() error
}
