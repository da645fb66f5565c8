package service

import (
	"alcyxob/fitness-catalog/internal/catalog"
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/gifurl"
	"alcyxob/fitness-catalog/internal/logger"
	"alcyxob/fitness-catalog/internal/normalize"
	"alcyxob/fitness-catalog/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRunInProgress is returned when a pass is requested while another is still running.
var ErrRunInProgress = errors.New("a reconciliation pass is already running")

// CatalogSource is the part of the catalog client the reconciler needs.
type CatalogSource interface {
	ListExercises(ctx context.Context, limit int) ([]catalog.Exercise, error)
	GetExercise(ctx context.Context, id string) (*catalog.Exercise, error)
}

// Options selects which repairs a Reconcile pass performs.
type Options struct {
	RepairGif         bool `json:"repairGif"`
	RepairFields      bool `json:"repairFields"`
	ResolveMissingIDs bool `json:"resolveMissingIds"`
	// ExactMatchOnly disables the first-word prefix fallback when resolving ids.
	ExactMatchOnly bool `json:"exactMatchOnly"`
}

// Summary counts what a pass did. Every processed record lands in exactly one of
// Created, Updated, Skipped or Failed; Linked, Unmatched and MissingID break those down.
type Summary struct {
	RunID      string    `json:"runId"`
	Mode       string    `json:"mode"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Linked     int       `json:"linked"`
	Skipped    int       `json:"skipped"`
	Unmatched  int       `json:"unmatched"`
	MissingID  int       `json:"missingId"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Duration reports how long the pass took.
func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeUpdated
	outcomeFailed
)

func (s *Summary) count(o outcome) {
	switch o {
	case outcomeUpdated:
		s.Updated++
	case outcomeFailed:
		s.Failed++
	default:
		s.Skipped++
	}
}

// Reconciler runs the import and repair passes that keep store records aligned with the
// catalog. Passes are sequential, one request in flight at a time, and idempotent: a re-run
// from the start is the recovery path for an interrupted pass.
type Reconciler struct {
	repo    repository.ExerciseRepository
	catalog CatalogSource
	gifs    gifurl.Builder
	log     *logger.Logger

	running sync.Mutex
	now     func() time.Time
}

// NewReconciler wires a reconciler. The caller owns every dependency's lifecycle.
func NewReconciler(repo repository.ExerciseRepository, source CatalogSource, gifs gifurl.Builder, log *logger.Logger) *Reconciler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Reconciler{
		repo:    repo,
		catalog: source,
		gifs:    gifs,
		log:     log,
		now:     time.Now,
	}
}

func (r *Reconciler) begin(mode string) (Summary, *logger.Logger, error) {
	if !r.running.TryLock() {
		return Summary{}, nil, ErrRunInProgress
	}
	s := Summary{RunID: uuid.NewString(), Mode: mode, StartedAt: r.now().UTC()}
	return s, r.log.With("run_id", s.RunID, "mode", mode), nil
}

func (r *Reconciler) end(s *Summary, log *logger.Logger) {
	s.FinishedAt = r.now().UTC()
	r.running.Unlock()
	log.Info("pass complete",
		"created", s.Created,
		"updated", s.Updated,
		"linked", s.Linked,
		"skipped", s.Skipped,
		"unmatched", s.Unmatched,
		"missing_id", s.MissingID,
		"failed", s.Failed,
		"duration", s.Duration().String(),
	)
}

// Import creates one store record per catalog record that is not in the store yet.
// Records already present are skipped, so re-running against the same catalog creates nothing.
func (r *Reconciler) Import(ctx context.Context, limit int) (s Summary, err error) {
	s, log, err := r.begin("import")
	if err != nil {
		return Summary{}, err
	}
	defer r.end(&s, log)

	entries := r.listCatalog(ctx, log, limit)
	log.Info("starting import", "catalog_records", len(entries))

	for _, ce := range entries {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		if ce.ID == "" {
			log.Warn("catalog record without id", "name", ce.Name)
			s.Skipped++
			continue
		}

		_, err := r.repo.FindByCatalogID(ctx, ce.ID)
		switch {
		case err == nil:
			s.Skipped++
			continue
		case !errors.Is(err, repository.ErrNotFound):
			log.Error("existence check failed", "catalog_id", ce.ID, "error", err)
			s.Failed++
			continue
		}

		ex := r.exerciseFromCatalog(ce)
		created, err := r.repo.CreateIfNotExists(ctx, &ex)
		if err != nil {
			log.Error("create failed", "catalog_id", ce.ID, "name", ce.Name, "error", err)
			s.Failed++
			continue
		}
		if !created {
			s.Skipped++
			continue
		}
		log.Info("created exercise", "catalog_id", ce.ID, "name", ce.Name)
		s.Created++
	}
	return s, nil
}

// exerciseFromCatalog builds the canonical store record for a catalog entry.
func (r *Reconciler) exerciseFromCatalog(ce catalog.Exercise) domain.Exercise {
	return domain.Exercise{
		ID:               domain.ExerciseKey(ce.ID),
		CatalogID:        ce.ID,
		Name:             ce.Name,
		BodyPart:         ce.BodyPart,
		Target:           ce.Target,
		Equipment:        ce.Equipment,
		SecondaryMuscles: orEmpty(ce.SecondaryMuscles),
		Category:         normalize.Category(ce.Category),
		Difficulty:       string(normalize.Difficulty(ce.Difficulty)),
		Instructions:     orEmpty(ce.Instructions),
		Description:      ce.Description,
		Tags:             orEmpty(ce.Tags),
		GifURL:           r.gifs.URL(ce.ID),
		IsActive:         true,
	}
}

// Reconcile runs one repair pass over every store record.
// Only a failure to read the store aborts the pass; per-record problems are counted.
func (r *Reconciler) Reconcile(ctx context.Context, opts Options) (s Summary, err error) {
	s, log, err := r.begin("reconcile")
	if err != nil {
		return Summary{}, err
	}
	defer r.end(&s, log)

	exercises, err := r.repo.FindAll(ctx)
	if err != nil {
		return s, fmt.Errorf("loading exercises: %w", err)
	}
	log.Info("starting reconcile",
		"records", len(exercises),
		"repair_gif", opts.RepairGif,
		"repair_fields", opts.RepairFields,
		"resolve_missing_ids", opts.ResolveMissingIDs,
	)

	linked := make(map[string]bool, len(exercises))
	for _, ex := range exercises {
		if ex.HasCatalogID() {
			linked[ex.CatalogID] = true
		}
	}

	var index *catalogIndex
	for _, ex := range exercises {
		if err := ctx.Err(); err != nil {
			return s, err
		}

		if !ex.HasCatalogID() {
			if !opts.ResolveMissingIDs {
				log.Warn("missing catalog id", "id", ex.ID, "name", ex.Name)
				s.MissingID++
				s.Skipped++
				continue
			}
			if index == nil {
				index = newCatalogIndex(r.listCatalog(ctx, log, 0))
			}
			s.count(r.link(ctx, log, &s, ex, index, linked, opts.ExactMatchOnly))
			continue
		}

		s.count(r.repair(ctx, log, ex, opts))
	}
	return s, nil
}

// link resolves a missing catalog id by name and patches it together with a fresh gifUrl.
func (r *Reconciler) link(ctx context.Context, log *logger.Logger, s *Summary, ex domain.Exercise, index *catalogIndex, linked map[string]bool, exactOnly bool) outcome {
	match, ok := index.match(ex.Name, exactOnly)
	if !ok {
		log.Warn("no catalog match", "id", ex.ID, "name", ex.Name)
		s.Unmatched++
		return outcomeSkipped
	}
	if linked[match.ID] {
		log.Warn("catalog match already linked to another record", "id", ex.ID, "name", ex.Name, "catalog_id", match.ID)
		return outcomeSkipped
	}

	catalogID := match.ID
	gifURL := r.gifs.URL(catalogID)
	patch := domain.ExercisePatch{CatalogID: &catalogID, GifURL: &gifURL}
	if err := r.repo.Patch(ctx, ex.ID, patch); err != nil {
		log.Error("linking failed", "id", ex.ID, "name", ex.Name, "catalog_id", catalogID, "error", err)
		return outcomeFailed
	}

	linked[catalogID] = true
	s.Linked++
	log.Info("linked exercise", "id", ex.ID, "name", ex.Name, "catalog_id", catalogID, "catalog_name", match.Name)
	return outcomeUpdated
}

// repair fills field gaps and stale gif urls on a linked record with a single patch.
// The gif repair does not depend on the field repair succeeding.
func (r *Reconciler) repair(ctx context.Context, log *logger.Logger, ex domain.Exercise, opts Options) outcome {
	var patch domain.ExercisePatch
	failed := false

	if opts.RepairFields {
		fields, err := r.fieldPatch(ctx, ex)
		patch.Merge(fields)
		if err != nil {
			log.Error("field repair failed", "id", ex.ID, "catalog_id", ex.CatalogID, "error", err)
			failed = true
		}
	}

	if opts.RepairGif && r.gifs.NeedsRepair(ex) {
		gifURL := r.gifs.URL(ex.CatalogID)
		patch.GifURL = &gifURL
	}

	if patch.IsEmpty() {
		if failed {
			return outcomeFailed
		}
		return outcomeSkipped
	}

	if err := r.repo.Patch(ctx, ex.ID, patch); err != nil {
		log.Error("patch failed", "id", ex.ID, "catalog_id", ex.CatalogID, "fields", patch.Fields(), "error", err)
		return outcomeFailed
	}
	log.Info("patched exercise", "id", ex.ID, "catalog_id", ex.CatalogID, "fields", patch.Fields())

	if failed {
		return outcomeFailed
	}
	return outcomeUpdated
}

// needsCatalogFields reports whether ex has a gap only the catalog can fill,
// or a difficulty that has to be re-normalised.
func needsCatalogFields(ex domain.Exercise) bool {
	return normalize.IsMissingArray(ex.SecondaryMuscles) ||
		normalize.IsMissingText(ex.Category) ||
		normalize.IsMissingText(ex.Description) ||
		normalize.IsMissingArray(ex.Instructions) ||
		!normalize.IsCanonicalDifficulty(ex.Difficulty)
}

// fieldPatch computes the field repairs for ex. Present values are never overwritten,
// except category casing (fixed locally) and difficulty (always re-written once the
// catalog record is fetched). On a fetch error the local-only repairs are still returned.
func (r *Reconciler) fieldPatch(ctx context.Context, ex domain.Exercise) (domain.ExercisePatch, error) {
	var p domain.ExercisePatch

	if !normalize.IsCanonicalCategory(ex.Category) && !normalize.IsMissingText(ex.Category) {
		category := normalize.Category(ex.Category)
		p.Category = &category
	}

	if !needsCatalogFields(ex) {
		return p, nil
	}

	ce, err := r.catalog.GetExercise(ctx, ex.CatalogID)
	if err != nil {
		return p, fmt.Errorf("fetching catalog record %s: %w", ex.CatalogID, err)
	}

	if normalize.IsMissingArray(ex.SecondaryMuscles) && len(ce.SecondaryMuscles) > 0 {
		p.SecondaryMuscles = ce.SecondaryMuscles
	}
	if normalize.IsMissingText(ex.Category) {
		if category := normalize.Category(ce.Category); category != "" {
			p.Category = &category
		}
	}
	if normalize.IsMissingText(ex.Description) && !normalize.IsMissingText(ce.Description) {
		description := ce.Description
		p.Description = &description
	}
	if normalize.IsMissingArray(ex.Instructions) && len(ce.Instructions) > 0 {
		p.Instructions = ce.Instructions
	}

	raw := ce.Difficulty
	if raw == "" {
		raw = ex.Difficulty
	}
	difficulty := normalize.Difficulty(raw)
	p.Difficulty = &difficulty

	return p, nil
}

// ListMissing returns the records that still have no catalog id.
func (r *Reconciler) ListMissing(ctx context.Context) ([]domain.Exercise, error) {
	return r.repo.FindMissingCatalogID(ctx)
}

// listCatalog fetches the bulk listing. A failure degrades to an empty listing so the
// pass reports records as unmatched instead of aborting.
func (r *Reconciler) listCatalog(ctx context.Context, log *logger.Logger, limit int) []catalog.Exercise {
	entries, err := r.catalog.ListExercises(ctx, limit)
	if err != nil {
		log.Error("catalog listing failed, continuing with an empty listing", "error", err)
		return nil
	}
	return entries
}

// catalogIndex matches local names against the catalog listing by normalised name.
type catalogIndex struct {
	entries []catalog.Exercise
	keys    []string
}

func newCatalogIndex(entries []catalog.Exercise) *catalogIndex {
	ix := &catalogIndex{}
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		ix.entries = append(ix.entries, e)
		ix.keys = append(ix.keys, normalize.Name(e.Name))
	}
	return ix
}

// match prefers an exact normalised-name match anywhere in the listing. Failing that,
// and unless exactOnly, it takes the first entry whose key starts with the local name's
// first word.
func (ix *catalogIndex) match(name string, exactOnly bool) (catalog.Exercise, bool) {
	key := normalize.Name(name)
	if key == "" {
		return catalog.Exercise{}, false
	}
	for i, k := range ix.keys {
		if k == key {
			return ix.entries[i], true
		}
	}
	if exactOnly {
		return catalog.Exercise{}, false
	}

	word := normalize.FirstWord(name)
	if word == "" {
		return catalog.Exercise{}, false
	}
	for i, k := range ix.keys {
		if strings.HasPrefix(k, word) {
			return ix.entries[i], true
		}
	}
	return catalog.Exercise{}, false
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
