package contacts

import (
	"time"

	"github.com/devfolio/portfolio-backend/internal/apperror"
)

const Collection = "contacts"

type Status string

const (
	StatusNew     Status = "new"
	StatusRead    Status = "read"
	StatusPending Status = "pending"
)

// Submission is stored once and never updated.
type Submission struct {
	ID          string    `firestore:"-" json:"id"`
	Name        string    `firestore:"name" json:"name"`
	Email       string    `firestore:"email" json:"email"`
	Message     string    `firestore:"message" json:"message"`
	SubmittedAt time.Time `firestore:"submittedAt" json:"submittedAt"`
	Status      Status    `firestore:"status" json:"status"`
}

type submitReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type submitResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type listResp struct {
	Contacts []Submission `json:"contacts"`
}

var (
	ErrMissingFields = apperror.Validation("Missing required fields")
	ErrInvalidEmail  = apperror.Validation("Invalid email format")
)

const notReadyMsg = "Database service not fully initialized. Please try again later."
