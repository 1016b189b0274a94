package bootstrap

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/devfolio/portfolio-backend/config"
	"github.com/devfolio/portfolio-backend/internal/projects/domain"
	projectsvc "github.com/devfolio/portfolio-backend/internal/projects/service"
	"github.com/devfolio/portfolio-backend/internal/skills"
	"github.com/devfolio/portfolio-backend/internal/technologies"
)

// SeedContent is what a seed run writes.
type SeedContent struct {
	Skills       []config.SkillDefault
	Technologies []string
	Projects     []domain.CreateInput
}

type SeedResult struct {
	Skills       int
	Technologies int
	Projects     int
}

// seed file layout
type ySeed struct {
	Skills       []ySkill   `yaml:"skills"`
	Technologies []string   `yaml:"technologies"`
	Projects     []yProject `yaml:"projects"`
}

type ySkill struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

type yProject struct {
	Slug            string   `yaml:"slug"`
	Title           string   `yaml:"title"`
	Description     string   `yaml:"description"`
	LongDescription string   `yaml:"long_description"`
	Technologies    []string `yaml:"technologies"`
	ImageURL        string   `yaml:"image_url"`
	HostedURL       string   `yaml:"hosted_url"`
	GithubURL       string   `yaml:"github_url"`
	Features        []string `yaml:"features"`
	Screenshots     []string `yaml:"screenshots"`
}

// ResolveSeedContent returns the content of defs.SeedFile when set and the
// built-in defaults otherwise.
func ResolveSeedContent(defs config.DefaultsConfig) (SeedContent, error) {
	if defs.SeedFile != "" {
		return LoadSeedFile(defs.SeedFile)
	}
	return SeedContent{Skills: defs.Skills, Technologies: defs.Technologies}, nil
}

// LoadSeedFile reads seed content from a YAML file. Sections missing from the
// file are left empty.
func LoadSeedFile(path string) (SeedContent, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return SeedContent{}, err
	}
	var y ySeed
	if err := yaml.Unmarshal(b, &y); err != nil {
		return SeedContent{}, fmt.Errorf("parse %s: %w", path, err)
	}

	out := SeedContent{Technologies: y.Technologies}
	for _, s := range y.Skills {
		out.Skills = append(out.Skills, config.SkillDefault{Name: s.Name, Level: s.Level})
	}
	for _, p := range y.Projects {
		out.Projects = append(out.Projects, domain.CreateInput{
			Slug:            p.Slug,
			Title:           p.Title,
			Description:     p.Description,
			LongDescription: p.LongDescription,
			Technologies:    p.Technologies,
			ImageURL:        p.ImageURL,
			HostedURL:       p.HostedURL,
			GithubURL:       p.GithubURL,
			Features:        p.Features,
			Screenshots:     p.Screenshots,
		})
	}
	return out, nil
}

// Seeder writes seed content through the regular services, so seeded
// documents pass the same validation as API writes.
type Seeder struct {
	Skills       *skills.Service
	Technologies *technologies.Repo
	Projects     *projectsvc.ProjectService
	Log          *zap.Logger
}

// Seed writes each section only into a collection that is still empty.
func (s *Seeder) Seed(ctx context.Context, content SeedContent) (SeedResult, error) {
	var res SeedResult

	if len(content.Skills) > 0 {
		existing, err := s.Skills.List(ctx)
		if err != nil {
			return res, fmt.Errorf("list skills: %w", err)
		}
		if len(existing) == 0 {
			for _, d := range content.Skills {
				level := float64(d.Level)
				if _, err := s.Skills.Create(ctx, skills.CreateInput{Name: d.Name, Level: &level}); err != nil {
					return res, fmt.Errorf("seed skill %q: %w", d.Name, err)
				}
				res.Skills++
			}
		} else {
			s.Log.Debug("skills already present, not seeding", zap.Int("count", len(existing)))
		}
	}

	if len(content.Technologies) > 0 {
		existing, err := s.Technologies.List(ctx)
		if err != nil {
			return res, fmt.Errorf("list technologies: %w", err)
		}
		if len(existing) == 0 {
			for _, name := range content.Technologies {
				if _, err := s.Technologies.Create(ctx, name); err != nil {
					return res, fmt.Errorf("seed technology %q: %w", name, err)
				}
				res.Technologies++
			}
		} else {
			s.Log.Debug("technologies already present, not seeding", zap.Int("count", len(existing)))
		}
	}

	if len(content.Projects) > 0 {
		existing, err := s.Projects.List(ctx)
		if err != nil {
			return res, fmt.Errorf("list projects: %w", err)
		}
		if len(existing) == 0 {
			for _, p := range content.Projects {
				if _, err := s.Projects.Create(ctx, p); err != nil {
					return res, fmt.Errorf("seed project %q: %w", p.Title, err)
				}
				res.Projects++
			}
		} else {
			s.Log.Debug("projects already present, not seeding", zap.Int("count", len(existing)))
		}
	}

	s.Log.Info("seeded content",
		zap.Int("skills", res.Skills),
		zap.Int("technologies", res.Technologies),
		zap.Int("projects", res.Projects),
	)
	return res, nil
}
