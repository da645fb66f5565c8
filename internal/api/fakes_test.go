package api

import (
	"alcyxob/fitness-catalog/internal/catalog"
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/repository"
	"alcyxob/fitness-catalog/internal/service"
	"alcyxob/fitness-catalog/internal/storage"
	"context"
	"sync"
)

type fakeImages struct {
	mu     sync.Mutex
	images map[string]*catalog.Image
	err    error
	calls  int
}

func (f *fakeImages) FetchImage(ctx context.Context, id string, resolution int) (*catalog.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	img, ok := f.images[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return img, nil
}

type memoryCache struct {
	mu      sync.Mutex
	objects map[string]storage.Asset
	putErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{objects: map[string]storage.Asset{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) (*storage.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &a, nil
}

func (m *memoryCache) Put(ctx context.Context, key string, asset storage.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = asset
	return nil
}

type fakeExerciseService struct {
	exercises  []domain.Exercise
	err        error
	lastFilter repository.ExerciseFilter
}

func (f *fakeExerciseService) ListExercises(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.exercises, nil
}

func (f *fakeExerciseService) GetExerciseByID(ctx context.Context, id string) (*domain.Exercise, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.exercises {
		if f.exercises[i].ID == id {
			return &f.exercises[i], nil
		}
	}
	return nil, service.ErrExerciseNotFound
}

type fakeRunner struct {
	err        error
	lastLimit  int
	lastOpts   service.Options
	importRuns int
}

func (f *fakeRunner) Import(ctx context.Context, limit int) (service.Summary, error) {
	f.importRuns++
	f.lastLimit = limit
	if f.err != nil {
		return service.Summary{}, f.err
	}
	return service.Summary{RunID: "run-1", Mode: "import", Created: 2}, nil
}

func (f *fakeRunner) Reconcile(ctx context.Context, opts service.Options) (service.Summary, error) {
	f.lastOpts = opts
	if f.err != nil {
		return service.Summary{}, f.err
	}
	return service.Summary{RunID: "run-2", Mode: "reconcile", Updated: 1}, nil
}
