package mongo

import (
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/repository"
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultExerciseCollection is used when no collection name is configured.
const DefaultExerciseCollection = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database, collection string) repository.ExerciseRepository {
	if collection == "" {
		collection = DefaultExerciseCollection
	}
	return &mongoExerciseRepository{
		collection: db.Collection(collection),
	}
}

// missingCatalogIDFilter matches documents whose catalogId is absent, null or empty.
var missingCatalogIDFilter = bson.M{
	"$or": bson.A{
		bson.M{"catalogId": bson.M{"$exists": false}},
		bson.M{"catalogId": nil},
		bson.M{"catalogId": ""},
	},
}

// FindAll retrieves every exercise, ordered by name.
func (r *mongoExerciseRepository) FindAll(ctx context.Context) ([]domain.Exercise, error) {
	return r.find(ctx, bson.M{})
}

// FindMissingCatalogID retrieves exercises that are not linked to the catalog yet.
func (r *mongoExerciseRepository) FindMissingCatalogID(ctx context.Context) ([]domain.Exercise, error) {
	return r.find(ctx, missingCatalogIDFilter)
}

// FindByCatalogID retrieves the exercise linked to catalogID.
func (r *mongoExerciseRepository) FindByCatalogID(ctx context.Context, catalogID string) (*domain.Exercise, error) {
	return r.findOne(ctx, bson.M{"catalogId": catalogID})
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindActive lists exercises that have not been deactivated. Documents without an
// isActive field count as active.
func (r *mongoExerciseRepository) FindActive(ctx context.Context, f repository.ExerciseFilter) ([]domain.Exercise, error) {
	filter := bson.M{"isActive": bson.M{"$ne": false}}
	if f.BodyPart != "" {
		filter["bodyPart"] = f.BodyPart
	}
	if f.Difficulty != "" {
		filter["difficulty"] = strings.ToLower(f.Difficulty)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	}
	return r.find(ctx, filter)
}

// Create inserts a new exercise. Exercises linked to the catalog get the deterministic
// key for their catalog id; others get a random one.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (string, error) {
	if exercise.Name == "" {
		return "", errors.New("exercise name is required")
	}
	if exercise.ID == "" {
		exercise.ID = newExerciseID(exercise)
	}
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, exercise); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrAlreadyExists
		}
		return "", err
	}
	return exercise.ID, nil
}

// CreateIfNotExists upserts on _id with $setOnInsert, so an existing document is never touched.
func (r *mongoExerciseRepository) CreateIfNotExists(ctx context.Context, exercise *domain.Exercise) (bool, error) {
	if exercise.Name == "" {
		return false, errors.New("exercise name is required")
	}
	if exercise.ID == "" {
		exercise.ID = newExerciseID(exercise)
	}
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	// _id comes from the filter on insert; leave it out of $setOnInsert.
	doc := *exercise
	doc.ID = ""

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": exercise.ID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Another document already owns this catalogId.
			return false, nil
		}
		return false, err
	}
	return result.UpsertedCount > 0, nil
}

// Patch sets only the fields carried by patch and bumps updatedAt.
func (r *mongoExerciseRepository) Patch(ctx context.Context, id string, patch domain.ExercisePatch) error {
	if id == "" {
		return errors.New("exercise ID is required for patch")
	}
	set := patchDocument(patch)
	if len(set) == 0 {
		return nil
	}
	set["updatedAt"] = time.Now().UTC()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// patchDocument turns a domain patch into the $set document for it.
func patchDocument(p domain.ExercisePatch) bson.M {
	set := bson.M{}
	if p.CatalogID != nil {
		set["catalogId"] = *p.CatalogID
	}
	if p.GifURL != nil {
		set["gifUrl"] = *p.GifURL
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Difficulty != nil {
		set["difficulty"] = string(*p.Difficulty)
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.SecondaryMuscles != nil {
		set["secondaryMuscles"] = p.SecondaryMuscles
	}
	if p.Instructions != nil {
		set["instructions"] = p.Instructions
	}
	return set
}

func newExerciseID(exercise *domain.Exercise) string {
	if exercise.HasCatalogID() {
		return domain.ExerciseKey(exercise.CatalogID)
	}
	return uuid.NewString()
}

func (r *mongoExerciseRepository) findOne(ctx context.Context, filter bson.M) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, filter).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

func (r *mongoExerciseRepository) find(ctx context.Context, filter bson.M) ([]domain.Exercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// exerciseIndexes lists the indexes the queries above rely on. Name search is a
// case-insensitive regex, so there is no text index.
func exerciseIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// One document per catalog entry; unlinked documents are exempt.
			Keys: bson.D{{Key: "catalogId", Value: 1}},
			Options: options.Index().
				SetName("exercise_catalog_id").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"catalogId": bson.M{"$gt": ""}}),
		},
		{
			Keys:    bson.D{{Key: "isActive", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("exercise_active_name"),
		},
	}
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, exerciseIndexes())
	return err
}
