package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// setupCheckCollection is queried by Ping; Firestore answers NotFound on any
// query while the database itself has not been created in the project.
const setupCheckCollection = "_setup_check"

type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

type firestoreSnapshot struct {
	doc *firestore.DocumentSnapshot
}

func (s firestoreSnapshot) ID() string { return s.doc.Ref.ID }

func (s firestoreSnapshot) DataTo(dst any) error { return s.doc.DataTo(dst) }

func (f *Firestore) Create(ctx context.Context, collection string, doc any) (string, error) {
	ref, _, err := f.client.Collection(collection).Add(ctx, doc)
	if err != nil {
		return "", mapWriteErr(err)
	}
	return ref.ID, nil
}

func (f *Firestore) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	if !validDocID(id) {
		return nil, ErrNotFound
	}
	doc, err := f.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapDocErr(err)
	}
	return firestoreSnapshot{doc: doc}, nil
}

func (f *Firestore) Replace(ctx context.Context, collection, id string, doc any) error {
	if !validDocID(id) {
		return ErrNotFound
	}
	ref := f.client.Collection(collection).Doc(id)
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, doc)
	})
	if err != nil {
		return mapDocErr(err)
	}
	return nil
}

func (f *Firestore) Delete(ctx context.Context, collection, id string) error {
	if !validDocID(id) {
		return ErrNotFound
	}
	if _, err := f.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		return mapDocErr(err)
	}
	return nil
}

func (f *Firestore) List(ctx context.Context, collection string, q Query) ([]Snapshot, error) {
	query := f.client.Collection(collection).Query
	for _, w := range q.Where {
		query = query.Where(w.Field, "==", w.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Dir == Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []Snapshot
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapWriteErr(err)
		}
		out = append(out, firestoreSnapshot{doc: doc})
	}
	return out, nil
}

func (f *Firestore) Ping(ctx context.Context) error {
	iter := f.client.Collection(setupCheckCollection).Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == nil || errors.Is(err, iterator.Done) {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return ErrNotProvisioned
	}
	return fmt.Errorf("firestore ping: %w", err)
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

// mapDocErr is used where NotFound refers to the addressed document.
func mapDocErr(err error) error {
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

// mapWriteErr is used for collection level calls, where NotFound can only
// mean the database is missing.
func mapWriteErr(err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %v", ErrNotProvisioned, err)
	}
	return err
}

func validDocID(id string) bool {
	return id != "" && !strings.Contains(id, "/")
}
