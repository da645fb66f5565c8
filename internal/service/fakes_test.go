package service

import (
	"alcyxob/fitness-catalog/internal/catalog"
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/repository"
	"context"
	"errors"
	"sort"
	"strings"
)

// memoryRepo is an in-memory ExerciseRepository that records every patch.
type memoryRepo struct {
	docs    map[string]domain.Exercise
	patches map[string][]domain.ExercisePatch
	failIDs map[string]bool // Patch fails for these ids
	findErr error
	creates int
}

func newMemoryRepo(exercises ...domain.Exercise) *memoryRepo {
	r := &memoryRepo{
		docs:    map[string]domain.Exercise{},
		patches: map[string][]domain.ExercisePatch{},
		failIDs: map[string]bool{},
	}
	for _, ex := range exercises {
		r.docs[ex.ID] = ex
	}
	return r
}

func (r *memoryRepo) patchCount() int {
	n := 0
	for _, p := range r.patches {
		n += len(p)
	}
	return n
}

func (r *memoryRepo) sorted(keep func(domain.Exercise) bool) []domain.Exercise {
	out := []domain.Exercise{}
	for _, ex := range r.docs {
		if keep(ex) {
			out = append(out, ex)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *memoryRepo) FindAll(ctx context.Context) ([]domain.Exercise, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.sorted(func(domain.Exercise) bool { return true }), nil
}

func (r *memoryRepo) FindMissingCatalogID(ctx context.Context) ([]domain.Exercise, error) {
	return r.sorted(func(ex domain.Exercise) bool { return !ex.HasCatalogID() }), nil
}

func (r *memoryRepo) FindByCatalogID(ctx context.Context, catalogID string) (*domain.Exercise, error) {
	for _, ex := range r.docs {
		if ex.CatalogID == catalogID {
			ex := ex
			return &ex, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	ex, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ex, nil
}

func (r *memoryRepo) FindActive(ctx context.Context, f repository.ExerciseFilter) ([]domain.Exercise, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.sorted(func(ex domain.Exercise) bool {
		return ex.IsActive &&
			(f.BodyPart == "" || ex.BodyPart == f.BodyPart) &&
			(f.Query == "" || strings.Contains(strings.ToLower(ex.Name), strings.ToLower(f.Query)))
	}), nil
}

func (r *memoryRepo) Create(ctx context.Context, ex *domain.Exercise) (string, error) {
	if _, ok := r.docs[ex.ID]; ok {
		return "", repository.ErrAlreadyExists
	}
	r.docs[ex.ID] = *ex
	r.creates++
	return ex.ID, nil
}

func (r *memoryRepo) CreateIfNotExists(ctx context.Context, ex *domain.Exercise) (bool, error) {
	if ex.Name == "" {
		return false, errors.New("exercise name is required")
	}
	if _, ok := r.docs[ex.ID]; ok {
		return false, nil
	}
	r.docs[ex.ID] = *ex
	r.creates++
	return true, nil
}

func (r *memoryRepo) Patch(ctx context.Context, id string, patch domain.ExercisePatch) error {
	if r.failIDs[id] {
		return errors.New("store unavailable")
	}
	ex, ok := r.docs[id]
	if !ok {
		return repository.ErrNotFound
	}
	patch.Apply(&ex)
	r.docs[id] = ex
	r.patches[id] = append(r.patches[id], patch)
	return nil
}

// fakeCatalog serves a fixed listing and counts single-record fetches.
type fakeCatalog struct {
	entries []catalog.Exercise
	listErr error
	getErr  map[string]error
	gets    int
	lists   int
}

func (c *fakeCatalog) ListExercises(ctx context.Context, limit int) ([]catalog.Exercise, error) {
	c.lists++
	if c.listErr != nil {
		return nil, c.listErr
	}
	if limit > 0 && limit < len(c.entries) {
		return c.entries[:limit], nil
	}
	return c.entries, nil
}

func (c *fakeCatalog) GetExercise(ctx context.Context, id string) (*catalog.Exercise, error) {
	c.gets++
	if err := c.getErr[id]; err != nil {
		return nil, err
	}
	for _, e := range c.entries {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, catalog.ErrNotFound
}
