package technologies

import (
	"context"
	"strings"
	"time"

	"github.com/devfolio/portfolio-backend/internal/store"
)

// Repo validates, timestamps and persists technologies.
type Repo struct {
	store store.Store
	now   func() time.Time
}

func NewRepo(s store.Store) *Repo {
	return &Repo{store: s, now: time.Now}
}

func (r *Repo) Create(ctx context.Context, name string) (*Technology, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	t := &Technology{Name: name, CreatedAt: r.timestamp()}
	id, err := r.store.Create(ctx, Collection, t)
	if err != nil {
		return nil, store.AppError(err, nil, "create technology")
	}
	t.ID = id
	return t, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Technology, error) {
	snap, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		return nil, store.AppError(err, ErrTechnologyNotFound, "get technology")
	}
	return decode(snap)
}

// List returns technologies ordered by name.
func (r *Repo) List(ctx context.Context) ([]Technology, error) {
	snaps, err := r.store.List(ctx, Collection, store.Query{OrderBy: "name", Dir: store.Asc})
	if err != nil {
		return nil, store.AppError(err, nil, "list technologies")
	}

	out := make([]Technology, 0, len(snaps))
	for _, snap := range snaps {
		t, err := decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

// Rename changes the name when one is supplied and always stamps updatedAt.
func (r *Repo) Rename(ctx context.Context, id string, name *string) (*Technology, error) {
	t, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, ErrNameEmpty
		}
		t.Name = n
	}
	updated := r.timestamp()
	t.UpdatedAt = &updated

	if err := r.store.Replace(ctx, Collection, id, t); err != nil {
		return nil, store.AppError(err, ErrTechnologyNotFound, "update technology")
	}
	return t, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, Collection, id); err != nil {
		return store.AppError(err, ErrTechnologyNotFound, "delete technology")
	}
	return nil
}

func (r *Repo) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func decode(snap store.Snapshot) (*Technology, error) {
	var t Technology
	if err := snap.DataTo(&t); err != nil {
		return nil, store.AppError(err, nil, "decode technology "+snap.ID())
	}
	t.ID = snap.ID()
	return &t, nil
}
