package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/LJTian/FeedbackHub/internal/collector"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "feedback"

// feedbackDoc 是 MongoDB 中的文档结构，_id 即记录 id
type feedbackDoc struct {
	ID          string    `bson:"_id"`
	Source      string    `bson:"source"`
	SourceURL   string    `bson:"source_url"`
	Title       *string   `bson:"title"`
	Text        string    `bson:"text"`
	Author      *string   `bson:"author"`
	Timestamp   time.Time `bson:"timestamp"`
	Score       *int      `bson:"score"`
	NumComments *int      `bson:"num_comments"`
	Products    []string  `bson:"products"`
	Categories  []string  `bson:"categories"`
	Sentiment   *string   `bson:"sentiment"`
	CollectedAt time.Time `bson:"collected_at"`
	Processed   bool      `bson:"processed"`
}

// MongoMirror 把新记录按 id upsert 到 MongoDB，已存在的文档不覆盖
type MongoMirror struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoMirror(ctx context.Context, uri, dbname string) (*MongoMirror, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("storage: connect mongo: %w", err)
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, fmt.Errorf("storage: ping mongo: %w", err)
	}

	m := &MongoMirror{
		client: cli,
		coll:   cli.Database(dbname).Collection(mongoCollection),
	}
	m.ensureIndexes(ctx)
	return m, nil
}

func (m *MongoMirror) Name() string {
	return "mongo"
}

func (m *MongoMirror) ensureIndexes(ctx context.Context) {
	_, _ = m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "source", Value: 1}}},
		{Keys: bson.D{{Key: "products", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	})
}

func (m *MongoMirror) SaveBatch(ctx context.Context, items []collector.Feedback) error {
	if len(items) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(items))
	for _, it := range items {
		doc := toDoc(it)
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetUpdate(bson.M{"$setOnInsert": doc}).
			SetUpsert(true))
	}

	if _, err := m.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("storage: mongo bulk write: %w", err)
	}
	return nil
}

func (m *MongoMirror) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func toDoc(f collector.Feedback) feedbackDoc {
	row := toRow(f)
	return feedbackDoc{
		ID:          row.ID,
		Source:      row.Source,
		SourceURL:   row.SourceURL,
		Title:       row.Title,
		Text:        row.Text,
		Author:      row.Author,
		Timestamp:   row.Timestamp,
		Score:       row.Score,
		NumComments: row.NumComments,
		Products:    []string(row.Products),
		Categories:  []string(row.Categories),
		Sentiment:   row.Sentiment,
		CollectedAt: row.CollectedAt,
		Processed:   row.Processed,
	}
}
