package skills

import (
	"context"
	"math"
	"strings"
	"time"
)

type Service struct {
	repo *Repo
	now  func() time.Time
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Skill, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if in.Level == nil {
		return nil, ErrInvalidLevel
	}
	level, err := normalizeLevel(*in.Level)
	if err != nil {
		return nil, err
	}

	sk := &Skill{
		Name:      name,
		Level:     level,
		CreatedAt: s.timestamp(),
	}
	id, err := s.repo.Create(ctx, sk)
	if err != nil {
		return nil, err
	}
	sk.ID = id
	return sk, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Skill, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Skill, error) {
	return s.repo.List(ctx)
}

// Update changes the supplied fields only.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Skill, error) {
	sk, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrNameEmpty
		}
		sk.Name = name
	}
	if in.Level != nil {
		if sk.Level, err = normalizeLevel(*in.Level); err != nil {
			return nil, err
		}
	}

	updated := s.timestamp()
	sk.UpdatedAt = &updated
	if err := s.repo.Replace(ctx, sk); err != nil {
		return nil, err
	}
	return sk, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// normalizeLevel checks the range before rounding, so 100.4 is rejected
// rather than rounded into range.
func normalizeLevel(v float64) (int, error) {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return 0, ErrInvalidLevel
	}
	return int(math.Round(v)), nil
}
