package skills

import (
	"context"

	"github.com/devfolio/portfolio-backend/internal/store"
)

type Repo struct {
	store store.Store
}

func NewRepo(s store.Store) *Repo {
	return &Repo{store: s}
}

func (r *Repo) Create(ctx context.Context, s *Skill) (string, error) {
	id, err := r.store.Create(ctx, Collection, s)
	if err != nil {
		return "", store.AppError(err, nil, "create skill")
	}
	return id, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Skill, error) {
	snap, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		return nil, store.AppError(err, ErrSkillNotFound, "get skill")
	}
	return decode(snap)
}

// List returns skills ordered by name.
func (r *Repo) List(ctx context.Context) ([]Skill, error) {
	snaps, err := r.store.List(ctx, Collection, store.Query{OrderBy: "name", Dir: store.Asc})
	if err != nil {
		return nil, store.AppError(err, nil, "list skills")
	}

	out := make([]Skill, 0, len(snaps))
	for _, snap := range snaps {
		s, err := decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *Repo) Replace(ctx context.Context, s *Skill) error {
	if err := r.store.Replace(ctx, Collection, s.ID, s); err != nil {
		return store.AppError(err, ErrSkillNotFound, "update skill")
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, Collection, id); err != nil {
		return store.AppError(err, ErrSkillNotFound, "delete skill")
	}
	return nil
}

func decode(snap store.Snapshot) (*Skill, error) {
	var s Skill
	if err := snap.DataTo(&s); err != nil {
		return nil, store.AppError(err, nil, "decode skill "+snap.ID())
	}
	s.ID = snap.ID()
	return &s, nil
}
