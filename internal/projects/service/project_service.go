package service

import (
	"context"
	"strings"
	"time"

	"github.com/devfolio/portfolio-backend/internal/apperror"
	"github.com/devfolio/portfolio-backend/internal/projects/domain"
	"github.com/devfolio/portfolio-backend/internal/projects/utils"
)

type Repository interface {
	Create(ctx context.Context, p *domain.Project) (string, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	FindBySlug(ctx context.Context, slug string) ([]domain.Project, error)
	Replace(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo Repository
	now  func() time.Time
}

// NewProjectService creates a new project service
func NewProjectService(repo Repository) *ProjectService {
	return &ProjectService{
		repo: repo,
		now:  time.Now,
	}
}

// Create validates the input, derives the slug when none is given and
// stamps createdAt.
func (s *ProjectService) Create(ctx context.Context, in domain.CreateInput) (*domain.Project, error) {
	p := &domain.Project{
		Title:           strings.TrimSpace(in.Title),
		Description:     strings.TrimSpace(in.Description),
		LongDescription: strings.TrimSpace(in.LongDescription),
		Technologies:    cleanList(in.Technologies),
		ImageURL:        strings.TrimSpace(in.ImageURL),
		HostedURL:       strings.TrimSpace(in.HostedURL),
		GithubURL:       strings.TrimSpace(in.GithubURL),
		Features:        cleanList(in.Features),
		Screenshots:     cleanList(in.Screenshots),
	}
	if err := validateRequired(p); err != nil {
		return nil, err
	}

	slug, err := resolveSlug(in.Slug, p.Title)
	if err != nil {
		return nil, err
	}
	p.Slug = slug
	if err := s.ensureSlugFree(ctx, slug, ""); err != nil {
		return nil, err
	}

	p.CreatedAt = s.timestamp()
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.repo.Get(ctx, id)
}

func (s *ProjectService) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	found, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, domain.ErrProjectNotFound
	}
	return &found[0], nil
}

func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.repo.List(ctx)
}

// Update applies a partial update. Lists that are not supplied are kept; a
// new title without an explicit slug re-derives the slug.
func (s *ProjectService) Update(ctx context.Context, id string, in domain.UpdateInput) (*domain.Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	setString(&p.Title, in.Title)
	setString(&p.Description, in.Description)
	setString(&p.LongDescription, in.LongDescription)
	setString(&p.ImageURL, in.ImageURL)
	setString(&p.HostedURL, in.HostedURL)
	setString(&p.GithubURL, in.GithubURL)
	setList(&p.Technologies, in.Technologies)
	setList(&p.Features, in.Features)
	setList(&p.Screenshots, in.Screenshots)
	if err := validateRequired(p); err != nil {
		return nil, err
	}

	switch {
	case in.Slug != nil:
		p.Slug, err = resolveSlug(*in.Slug, p.Title)
	case in.Title != nil:
		p.Slug, err = resolveSlug("", p.Title)
	}
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, p.Slug, p.ID); err != nil {
		return nil, err
	}

	updated := s.timestamp()
	p.UpdatedAt = &updated
	if err := s.repo.Replace(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// ensureSlugFree reports a conflict when another project already uses slug.
// Two concurrent creates can still both pass this check.
func (s *ProjectService) ensureSlugFree(ctx context.Context, slug, selfID string) error {
	found, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	for _, other := range found {
		if other.ID != selfID {
			return domain.ErrSlugTaken
		}
	}
	return nil
}

// timestamp is UTC at microsecond precision, the resolution Firestore keeps.
func (s *ProjectService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func resolveSlug(explicit, title string) (string, error) {
	source := strings.TrimSpace(explicit)
	if source == "" {
		source = title
	}
	slug := utils.Slugify(source)
	if slug == "" || strings.Trim(slug, "-_") == "" {
		return "", apperror.Validation("slug must contain at least one letter or digit")
	}
	return slug, nil
}

func validateRequired(p *domain.Project) error {
	switch {
	case p.Title == "":
		return apperror.Validation("title is required")
	case p.Description == "":
		return apperror.Validation("description is required")
	case p.GithubURL == "":
		return apperror.Validation("githubUrl is required")
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setList(dst *[]string, v *[]string) {
	if v != nil {
		*dst = cleanList(*v)
	}
}

// cleanList trims entries, drops empty ones and never returns nil.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
