package mongo

import (
	"context"
	"fmt"
	"time"

	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type personalRecordDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Kind      string             `bson:"kind"`
	Lift      string             `bson:"lift"`
	Value     float64            `bson:"value"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type mongoPersonalRecordRepository struct {
	collection *mongo.Collection
}

func NewMongoPersonalRecordRepository(db *mongo.Database) repository.PersonalRecordRepository {
	return &mongoPersonalRecordRepository{
		collection: db.Collection(personalRecordCollectionName),
	}
}

// Upsert replaces the value of the (user, kind, lift) record, creating it if missing.
func (r *mongoPersonalRecordRepository) Upsert(ctx context.Context, record *domain.PersonalRecord) error {
	now := time.Now().UTC()
	filter := bson.M{"userId": record.UserID, "kind": string(record.Kind), "lift": record.Lift}
	update := bson.M{
		"$set":         bson.M{"value": record.Value, "updatedAt": now},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}

	var doc personalRecordDocument
	err := r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return err
	}

	record.ID = doc.ID.Hex()
	record.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *mongoPersonalRecordRepository) ListByUser(ctx context.Context, userID string, kind domain.RecordKind) ([]domain.PersonalRecord, error) {
	filter := bson.M{"userId": userID}
	if kind != "" {
		filter["kind"] = string(kind)
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "kind", Value: 1}, {Key: "lift", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []personalRecordDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make([]domain.PersonalRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, domain.PersonalRecord{
			ID:        d.ID.Hex(),
			UserID:    d.UserID,
			Kind:      domain.RecordKind(d.Kind),
			Lift:      d.Lift,
			Value:     d.Value,
			UpdatedAt: d.UpdatedAt,
		})
	}
	return records, nil
}

func EnsurePersonalRecordIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "kind", Value: 1}, {Key: "lift", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes for %s: %w", collection.Name(), err)
	}
	return nil
}
