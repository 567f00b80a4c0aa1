package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type scoreDocument struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty"`
	MemberName string              `bson:"memberName"`
	WodDate    string              `bson:"wodDate"`
	WodID      *primitive.ObjectID `bson:"wodId,omitempty"`
	Level      string              `bson:"level"`
	ScoreRaw   string              `bson:"scoreRaw"`
	ScoreValue *float64            `bson:"scoreValue"`
	Remark     string              `bson:"remark,omitempty"`
	RecordedBy string              `bson:"recordedBy,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt"`
}

// rankingDocument is one row of the ranking pipeline output.
type rankingDocument struct {
	scoreDocument `bson:",inline"`
	WodTitle      string `bson:"wodTitle"`
	Rank          *int   `bson:"rank"`
}

func (d *scoreDocument) toDomain() domain.ScoreRecord {
	s := domain.ScoreRecord{
		ID:         d.ID.Hex(),
		MemberName: d.MemberName,
		WodDate:    d.WodDate,
		Level:      domain.Level(d.Level),
		ScoreRaw:   d.ScoreRaw,
		ScoreValue: d.ScoreValue,
		Remark:     d.Remark,
		RecordedBy: d.RecordedBy,
		CreatedAt:  d.CreatedAt,
	}
	if d.WodID != nil {
		s.WodID = d.WodID.Hex()
	}
	return s
}

type mongoScoreRepository struct {
	collection *mongo.Collection
}

func NewMongoScoreRepository(db *mongo.Database) repository.ScoreRepository {
	return &mongoScoreRepository{
		collection: db.Collection(scoreCollectionName),
	}
}

func (r *mongoScoreRepository) Create(ctx context.Context, score *domain.ScoreRecord) (string, error) {
	if score.MemberName == "" || score.WodDate == "" {
		return "", errors.New("score requires member name and wod date")
	}

	doc := scoreDocument{
		ID:         primitive.NewObjectID(),
		MemberName: score.MemberName,
		WodDate:    score.WodDate,
		Level:      string(score.Level),
		ScoreRaw:   score.ScoreRaw,
		ScoreValue: score.ScoreValue,
		Remark:     score.Remark,
		RecordedBy: score.RecordedBy,
		CreatedAt:  time.Now().UTC(),
	}
	if score.WodID != "" {
		wid, err := objectID(score.WodID)
		if err != nil {
			return "", err
		}
		doc.WodID = &wid
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return "", err
	}

	score.ID = doc.ID.Hex()
	score.CreatedAt = doc.CreatedAt
	return score.ID, nil
}

func (r *mongoScoreRepository) ListByDate(ctx context.Context, date string, rankedOnly bool) ([]domain.ScoreRecord, error) {
	filter := bson.M{"wodDate": date}
	if rankedOnly {
		filter["scoreValue"] = bson.M{"$ne": nil}
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []scoreDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	scores := make([]domain.ScoreRecord, 0, len(docs))
	for i := range docs {
		scores = append(scores, docs[i].toDomain())
	}
	return scores, nil
}

// RankingByDate runs the ranking view as an aggregation. The per-level rank is a
// competition rank ("1,2,2,4") over scoreValue descending. Needs MongoDB 5.0+.
func (r *mongoScoreRepository) RankingByDate(ctx context.Context, date string) ([]domain.RankingRow, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"wodDate": date, "scoreValue": bson.M{"$ne": nil}}}},
		{{Key: "$setWindowFields", Value: bson.M{
			"partitionBy": "$level",
			"sortBy":      bson.M{"scoreValue": -1},
			"output":      bson.M{"rank": bson.M{"$rank": bson.M{}}},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         workoutCollectionName,
			"localField":   "wodId",
			"foreignField": "_id",
			"as":           "wod",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"wodTitle": bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$wod.title", 0}}, ""}},
		}}},
		{{Key: "$project", Value: bson.M{"wod": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "level", Value: 1}, {Key: "rank", Value: 1}, {Key: "memberName", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("ranking aggregation: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []rankingDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	rows := make([]domain.RankingRow, 0, len(docs))
	for i := range docs {
		rows = append(rows, domain.RankingRow{
			ScoreRecord: docs[i].toDomain(),
			WodTitle:    docs[i].WodTitle,
			Rank:        docs[i].Rank,
		})
	}
	return rows, nil
}

func (r *mongoScoreRepository) DatesByMember(ctx context.Context, memberName, from, to string) ([]string, error) {
	filter := bson.M{
		"memberName": memberName,
		"wodDate":    bson.M{"$gte": from, "$lte": to},
	}
	values, err := r.collection.Distinct(ctx, "wodDate", filter)
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			dates = append(dates, s)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

func EnsureScoreIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "wodDate", Value: 1}, {Key: "level", Value: 1}, {Key: "scoreValue", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "memberName", Value: 1}, {Key: "wodDate", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "wodId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes for %s: %w", collection.Name(), err)
	}
	return nil
}
