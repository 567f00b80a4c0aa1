package mongo

import (
	"context"
	"time"

	"cfq/wod-board/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

const (
	workoutCollectionName        = "wods"
	scoreCollectionName          = "records"
	userCollectionName           = "users"
	personalRecordCollectionName = "personal_records"
)

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewStore wires every mongo repository against db.
func NewStore(db *mongo.Database) *repository.Store {
	return &repository.Store{
		Workouts:        NewMongoWorkoutRepository(db),
		Scores:          NewMongoScoreRepository(db),
		Users:           NewMongoUserRepository(db),
		PersonalRecords: NewMongoPersonalRecordRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection. Call once at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ensure := []func(context.Context, *mongo.Collection) error{
		EnsureWorkoutIndexes,
		EnsureScoreIndexes,
		EnsureUserIndexes,
		EnsurePersonalRecordIndexes,
	}
	names := []string{
		workoutCollectionName,
		scoreCollectionName,
		userCollectionName,
		personalRecordCollectionName,
	}
	for i, fn := range ensure {
		if err := fn(ctx, db.Collection(names[i])); err != nil {
			return err
		}
	}
	return nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrInvalidID
	}
	return oid, nil
}
