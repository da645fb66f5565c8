// internal/domain/exercise.go
package domain

import (
	"strings"
	"time"
)

// Difficulty is the canonical, lowercase difficulty level of an exercise.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the three recognised levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// exerciseKeyPrefix is prepended to the catalog id to form deterministic document ids.
const exerciseKeyPrefix = "exercise-"

// ExerciseKey returns the deterministic store id for an exercise imported from the catalog.
// Creating with this key makes repeated imports collapse onto the same document.
func ExerciseKey(catalogID string) string {
	return exerciseKeyPrefix + catalogID
}

// Exercise is the canonical exercise record held by the content store.
type Exercise struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CatalogID string `bson:"catalogId,omitempty" json:"catalogId,omitempty"` // Link into the third-party catalog; empty = not linked yet
	Name      string `bson:"name" json:"name"`

	BodyPart         string   `bson:"bodyPart,omitempty" json:"bodyPart,omitempty"`
	Target           string   `bson:"target,omitempty" json:"target,omitempty"` // Target muscle
	Equipment        string   `bson:"equipment,omitempty" json:"equipment,omitempty"`
	SecondaryMuscles []string `bson:"secondaryMuscles,omitempty" json:"secondaryMuscles"`

	Category   string `bson:"category,omitempty" json:"category,omitempty"`     // Always lowercase once repaired
	Difficulty string `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // Stored raw so bad casing stays detectable

	Instructions []string `bson:"instructions,omitempty" json:"instructions"`
	Description  string   `bson:"description,omitempty" json:"description,omitempty"`
	Tags         []string `bson:"tags,omitempty" json:"tags"`

	GifURL   string `bson:"gifUrl,omitempty" json:"gifUrl,omitempty"`
	IsActive bool   `bson:"isActive" json:"isActive"`

	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt"`
}

// HasCatalogID reports whether the record is linked to a catalog entry.
func (e Exercise) HasCatalogID() bool {
	return strings.TrimSpace(e.CatalogID) != ""
}

// ExercisePatch is a partial update. Nil pointers and nil slices leave the stored
// field untouched; a non-nil empty slice overwrites it with an empty list.
type ExercisePatch struct {
	CatalogID        *string
	GifURL           *string
	Category         *string
	Difficulty       *Difficulty
	Description      *string
	SecondaryMuscles []string
	Instructions     []string
}

// IsEmpty reports whether applying the patch would change nothing.
func (p ExercisePatch) IsEmpty() bool {
	return p.CatalogID == nil &&
		p.GifURL == nil &&
		p.Category == nil &&
		p.Difficulty == nil &&
		p.Description == nil &&
		p.SecondaryMuscles == nil &&
		p.Instructions == nil
}

// Merge copies every field set in o onto p, overriding p's value.
func (p *ExercisePatch) Merge(o ExercisePatch) {
	if o.CatalogID != nil {
		p.CatalogID = o.CatalogID
	}
	if o.GifURL != nil {
		p.GifURL = o.GifURL
	}
	if o.Category != nil {
		p.Category = o.Category
	}
	if o.Difficulty != nil {
		p.Difficulty = o.Difficulty
	}
	if o.Description != nil {
		p.Description = o.Description
	}
	if o.SecondaryMuscles != nil {
		p.SecondaryMuscles = o.SecondaryMuscles
	}
	if o.Instructions != nil {
		p.Instructions = o.Instructions
	}
}

// Fields lists the names of the fields the patch sets, in a stable order.
func (p ExercisePatch) Fields() []string {
	var fields []string
	if p.CatalogID != nil {
		fields = append(fields, "catalogId")
	}
	if p.GifURL != nil {
		fields = append(fields, "gifUrl")
	}
	if p.SecondaryMuscles != nil {
		fields = append(fields, "secondaryMuscles")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Instructions != nil {
		fields = append(fields, "instructions")
	}
	if p.Difficulty != nil {
		fields = append(fields, "difficulty")
	}
	return fields
}

// Apply copies the patched fields onto e. Used to keep an in-memory copy in sync
// with what was committed.
func (p ExercisePatch) Apply(e *Exercise) {
	if p.CatalogID != nil {
		e.CatalogID = *p.CatalogID
	}
	if p.GifURL != nil {
		e.GifURL = *p.GifURL
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Difficulty != nil {
		e.Difficulty = string(*p.Difficulty)
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.SecondaryMuscles != nil {
		e.SecondaryMuscles = p.SecondaryMuscles
	}
	if p.Instructions != nil {
		e.Instructions = p.Instructions
	}
}
