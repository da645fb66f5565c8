package repository

import (
	"alcyxob/fitness-catalog/internal/domain" // Import our defined domain models
	"context"
)

// Error constants for repository layer
var (
	ErrNotFound      = RepositoryError("not found")
	ErrAlreadyExists = RepositoryError("already exists")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ExerciseFilter narrows library listings. Empty fields match everything.
type ExerciseFilter struct {
	BodyPart   string
	Difficulty string
	Query      string // Case-insensitive substring of the name
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	// FindAll returns every exercise document.
	FindAll(ctx context.Context) ([]domain.Exercise, error)
	// FindMissingCatalogID returns exercises not yet linked to the catalog.
	FindMissingCatalogID(ctx context.Context) ([]domain.Exercise, error)
	// FindByCatalogID returns ErrNotFound when no exercise carries catalogID.
	FindByCatalogID(ctx context.Context, catalogID string) (*domain.Exercise, error)
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	FindActive(ctx context.Context, filter ExerciseFilter) ([]domain.Exercise, error)

	// Create inserts a new exercise and returns its id. Duplicate keys yield ErrAlreadyExists.
	Create(ctx context.Context, exercise *domain.Exercise) (string, error)
	// CreateIfNotExists inserts the exercise only when no document has its id.
	// created is false when the document was already there; it is never modified.
	CreateIfNotExists(ctx context.Context, exercise *domain.Exercise) (created bool, err error)
	// Patch sets only the fields present in patch. Unknown ids yield ErrNotFound.
	Patch(ctx context.Context, id string, patch domain.ExercisePatch) error
}
