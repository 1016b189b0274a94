package skills

import (
	"time"

	"github.com/devfolio/portfolio-backend/internal/apperror"
)

const Collection = "skills"

type Skill struct {
	ID        string     `firestore:"-" json:"id"`
	Name      string     `firestore:"name" json:"name"`
	Level     int        `firestore:"level" json:"level"`
	CreatedAt time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Level is accepted as any JSON number and rounded once validated.
type CreateInput struct {
	Name  string   `json:"name"`
	Level *float64 `json:"level"`
}

type UpdateInput struct {
	Name  *string  `json:"name"`
	Level *float64 `json:"level"`
}

var (
	ErrSkillNotFound = apperror.NotFound("Skill not found")
	ErrNameRequired  = apperror.Validation("Skill name is required")
	ErrNameEmpty     = apperror.Validation("Skill name cannot be empty")
	ErrInvalidLevel  = apperror.Validation("Valid skill level (0-100) is required")
)
