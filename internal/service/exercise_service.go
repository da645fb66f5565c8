package service

import (
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/repository"
	"context"
	"errors"
	"strings"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
)

// ExerciseService serves the read-only exercise library to the app.
type ExerciseService interface {
	ListExercises(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID string) (*domain.Exercise, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
	}
}

// ListExercises returns the active exercises matching filter, ordered by name.
// Filter values are matched against the stored lowercase forms.
func (s *exerciseService) ListExercises(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	filter = repository.ExerciseFilter{
		BodyPart:   strings.ToLower(strings.TrimSpace(filter.BodyPart)),
		Difficulty: strings.ToLower(strings.TrimSpace(filter.Difficulty)),
		Query:      strings.TrimSpace(filter.Query),
	}
	exercises, err := s.exerciseRepo.FindActive(ctx, filter)
	if err != nil {
		return nil, err
	}
	return exercises, nil
}

// GetExerciseByID retrieves a single exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID string) (*domain.Exercise, error) {
	if exerciseID == "" {
		return nil, ErrExerciseNotFound
	}
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err // Propagate other repository errors
	}
	return exercise, nil
}
