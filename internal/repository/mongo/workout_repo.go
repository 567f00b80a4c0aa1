package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// workoutDocument is the stored shape of a workout. Type is left untyped because
// older documents hold a JSON string or a comma separated string instead of an array.
type workoutDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Date        string             `bson:"date"`
	Title       string             `bson:"title"`
	Type        interface{}        `bson:"type"`
	Description string             `bson:"description"`
	Level       string             `bson:"level"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *workoutDocument) toDomain() domain.Workout {
	return domain.Workout{
		ID:          d.ID.Hex(),
		Date:        d.Date,
		Title:       d.Title,
		Categories:  domain.NormalizeCategories(d.Type),
		Description: d.Description,
		Level:       d.Level,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout. Categories are always written as a native array.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (string, error) {
	if workout.Date == "" || workout.Title == "" {
		return "", errors.New("workout requires date and title")
	}

	now := time.Now().UTC()
	doc := workoutDocument{
		ID:          primitive.NewObjectID(),
		Date:        workout.Date,
		Title:       workout.Title,
		Type:        workout.Categories,
		Description: workout.Description,
		Level:       workout.Level,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return "", err
	}

	workout.ID = doc.ID.Hex()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	return workout.ID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, nil)
}

// GetLatestByDate returns the most recently created workout of a date.
func (r *mongoWorkoutRepository) GetLatestByDate(ctx context.Context, date string) (*domain.Workout, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return r.findOne(ctx, bson.M{"date": date}, opts)
}

func (r *mongoWorkoutRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Workout, error) {
	var doc workoutDocument
	var err error
	if opts != nil {
		err = r.collection.FindOne(ctx, filter, opts).Decode(&doc)
	} else {
		err = r.collection.FindOne(ctx, filter).Decode(&doc)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	w := doc.toDomain()
	return &w, nil
}

// List returns workouts matching filter ordered by date, then creation time.
func (r *mongoWorkoutRepository) List(ctx context.Context, filter repository.WorkoutFilter) ([]domain.Workout, error) {
	query := bson.M{}
	switch {
	case filter.Date != "":
		query["date"] = filter.Date
	case filter.From != "" || filter.To != "":
		rng := bson.M{}
		if filter.From != "" {
			rng["$gte"] = filter.From
		}
		if filter.To != "" {
			rng["$lte"] = filter.To
		}
		query["date"] = rng
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []workoutDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	workouts := make([]domain.Workout, 0, len(docs))
	for i := range docs {
		workouts = append(workouts, docs[i].toDomain())
	}
	return workouts, nil
}

func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	oid, err := objectID(workout.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"date":        workout.Date,
			"title":       workout.Title,
			"type":        workout.Categories,
			"description": workout.Description,
			"level":       workout.Level,
			"updatedAt":   now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUpdateFailed, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	workout.UpdatedAt = now
	return nil
}

func (r *mongoWorkoutRepository) Titles(ctx context.Context) (map[string]string, error) {
	findOptions := options.Find().SetProjection(bson.M{"_id": 1, "title": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	titles := make(map[string]string)
	for cursor.Next(ctx) {
		var doc struct {
			ID    primitive.ObjectID `bson:"_id"`
			Title string             `bson:"title"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		titles[doc.ID.Hex()] = doc.Title
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return titles, nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes for %s: %w", collection.Name(), err)
	}
	return nil
}
