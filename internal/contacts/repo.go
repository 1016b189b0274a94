package contacts

import (
	"context"
	"errors"

	"github.com/devfolio/portfolio-backend/internal/apperror"
	"github.com/devfolio/portfolio-backend/internal/store"
)

type Repo struct {
	store store.Store
}

func NewRepo(s store.Store) *Repo {
	return &Repo{store: s}
}

// Ready reports whether the database can take writes. Any ping failure is
// surfaced as unavailable.
func (r *Repo) Ready(ctx context.Context) error {
	err := r.store.Ping(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotProvisioned):
		return apperror.Unavailable(notReadyMsg, err)
	default:
		return apperror.Unavailable(store.ErrUnavailable.Msg, err)
	}
}

func (r *Repo) Create(ctx context.Context, s *Submission) (string, error) {
	id, err := r.store.Create(ctx, Collection, s)
	if err != nil {
		return "", store.AppError(err, nil, "save contact submission")
	}
	return id, nil
}

// ListNewestFirst returns every submission ordered by submittedAt desc.
func (r *Repo) ListNewestFirst(ctx context.Context) ([]Submission, error) {
	snaps, err := r.store.List(ctx, Collection, store.Query{OrderBy: "submittedAt", Dir: store.Desc})
	if err != nil {
		return nil, store.AppError(err, nil, "list contact submissions")
	}

	out := make([]Submission, 0, len(snaps))
	for _, snap := range snaps {
		var s Submission
		if err := snap.DataTo(&s); err != nil {
			return nil, store.AppError(err, nil, "decode contact submission "+snap.ID())
		}
		s.ID = snap.ID()
		if s.Status == "" {
			s.Status = StatusNew
		}
		out = append(out, s)
	}
	return out, nil
}
