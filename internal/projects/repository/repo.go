package repository

import (
	"context"

	"github.com/devfolio/portfolio-backend/internal/projects/domain"
	"github.com/devfolio/portfolio-backend/internal/store"
)

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	store store.Store
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(s store.Store) *ProjectRepository {
	return &ProjectRepository{store: s}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (string, error) {
	id, err := r.store.Create(ctx, domain.Collection, p)
	if err != nil {
		return "", store.AppError(err, nil, "create project")
	}
	return id, nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*domain.Project, error) {
	snap, err := r.store.Get(ctx, domain.Collection, id)
	if err != nil {
		return nil, store.AppError(err, domain.ErrProjectNotFound, "get project")
	}
	return decode(snap)
}

// List returns every project in store order.
func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	return r.list(ctx, store.Query{})
}

func (r *ProjectRepository) FindBySlug(ctx context.Context, slug string) ([]domain.Project, error) {
	return r.list(ctx, store.Query{Where: []store.Filter{{Field: "slug", Value: slug}}})
}

func (r *ProjectRepository) Replace(ctx context.Context, p *domain.Project) error {
	if err := r.store.Replace(ctx, domain.Collection, p.ID, p); err != nil {
		return store.AppError(err, domain.ErrProjectNotFound, "update project")
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, domain.Collection, id); err != nil {
		return store.AppError(err, domain.ErrProjectNotFound, "delete project")
	}
	return nil
}

func (r *ProjectRepository) list(ctx context.Context, q store.Query) ([]domain.Project, error) {
	snaps, err := r.store.List(ctx, domain.Collection, q)
	if err != nil {
		return nil, store.AppError(err, nil, "list projects")
	}

	out := make([]domain.Project, 0, len(snaps))
	for _, snap := range snaps {
		p, err := decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func decode(snap store.Snapshot) (*domain.Project, error) {
	var p domain.Project
	if err := snap.DataTo(&p); err != nil {
		return nil, store.AppError(err, nil, "decode project "+snap.ID())
	}
	p.ID = snap.ID()
	p.Normalize()
	return &p, nil
}
