package technologies

import (
	"time"

	"github.com/devfolio/portfolio-backend/internal/apperror"
)

const Collection = "technologies"

type Technology struct {
	ID        string     `firestore:"-" json:"id"`
	Name      string     `firestore:"name" json:"name"`
	CreatedAt time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type createReq struct {
	Name string `json:"name"`
}

type updateReq struct {
	Name *string `json:"name"`
}

var (
	ErrTechnologyNotFound = apperror.NotFound("Technology not found")
	ErrNameRequired       = apperror.Validation("Technology name is required")
	ErrNameEmpty          = apperror.Validation("Technology name cannot be empty")
)
