package domain

import (
	"time"

	"github.com/devfolio/portfolio-backend/internal/apperror"
)

const Collection = "projects"

// Project is a portfolio entry. Field names are shared by the document
// store and the JSON API.
type Project struct {
	ID              string     `firestore:"-" json:"id"`
	Slug            string     `firestore:"slug" json:"slug"`
	Title           string     `firestore:"title" json:"title"`
	Description     string     `firestore:"description" json:"description"`
	LongDescription string     `firestore:"longDescription" json:"longDescription"`
	Technologies    []string   `firestore:"technologies" json:"technologies"`
	ImageURL        string     `firestore:"imageUrl" json:"imageUrl"`
	HostedURL       string     `firestore:"hostedUrl,omitempty" json:"hostedUrl,omitempty"`
	GithubURL       string     `firestore:"githubUrl" json:"githubUrl"`
	Features        []string   `firestore:"features" json:"features"`
	Screenshots     []string   `firestore:"screenshots" json:"screenshots"`
	CreatedAt       time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt       *time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Normalize replaces missing lists with empty ones.
func (p *Project) Normalize() {
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	if p.Screenshots == nil {
		p.Screenshots = []string{}
	}
}

type CreateInput struct {
	Slug            string   `json:"slug"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	LongDescription string   `json:"longDescription"`
	Technologies    []string `json:"technologies"`
	ImageURL        string   `json:"imageUrl"`
	HostedURL       string   `json:"hostedUrl"`
	GithubURL       string   `json:"githubUrl"`
	Features        []string `json:"features"`
	Screenshots     []string `json:"screenshots"`
}

// UpdateInput is a partial update: nil fields keep their stored value.
type UpdateInput struct {
	Slug            *string   `json:"slug"`
	Title           *string   `json:"title"`
	Description     *string   `json:"description"`
	LongDescription *string   `json:"longDescription"`
	Technologies    *[]string `json:"technologies"`
	ImageURL        *string   `json:"imageUrl"`
	HostedURL       *string   `json:"hostedUrl"`
	GithubURL       *string   `json:"githubUrl"`
	Features        *[]string `json:"features"`
	Screenshots     *[]string `json:"screenshots"`
}

var (
	ErrProjectNotFound = apperror.NotFound("Project not found")
	ErrSlugTaken       = apperror.Conflict("A project with this slug already exists")
)
