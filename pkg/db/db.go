package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"play-extract/pkg/domain"
)

// Client wraps the MongoDB client and database connection
type Client struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	collection  *mongo.Collection
}

// NewClient creates a new MongoDB client. Connection errors surface from Connect.
func NewClient(connectionString, databaseName, collectionName string) *Client {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		return &Client{}
	}

	database := mongoClient.Database(databaseName)
	return &Client{
		mongoClient: mongoClient,
		database:    database,
		collection:  database.Collection(collectionName),
	}
}

// Connect verifies the connection to MongoDB
func (c *Client) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	if err := c.mongoClient.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := c.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("create name index: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB
func (c *Client) Close() error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(context.Background())
}

// SaveRecord upserts a play record, using its name as the key
func (c *Client) SaveRecord(ctx context.Context, record *domain.PlayRecord) (string, error) {
	if c.collection == nil {
		return "", fmt.Errorf("collection not initialized")
	}
	if record == nil || record.Name == "" {
		return "", fmt.Errorf("record name is empty")
	}

	filter := bson.M{"name": record.Name}
	update := bson.M{"$set": recordDocument(record)}
	opts := options.Update().SetUpsert(true)

	if _, err := c.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return "", fmt.Errorf("upsert %s: %w", record.Name, err)
	}
	return fmt.Sprintf("mongodb:%s.%s/%s", c.database.Name(), c.collection.Name(), record.Name), nil
}

// GetAllSourceURLs fetches all source URLs from the collection as a set
func (c *Client) GetAllSourceURLs(ctx context.Context) (map[string]bool, error) {
	if c.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	cursor, err := c.collection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"source_url": 1, "_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to query source URLs: %w", err)
	}
	defer cursor.Close(ctx)

	urlSet := make(map[string]bool)
	for cursor.Next(ctx) {
		var result struct {
			SourceURL string `bson:"source_url"`
		}
		if err := cursor.Decode(&result); err != nil {
			continue
		}
		if result.SourceURL != "" {
			urlSet[result.SourceURL] = true
		}
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return urlSet, nil
}

// recordDocument lays a record out as an ordered BSON document. The transcript
// is stored as a list of speaker entries in encounter order, since speaker
// names may contain dots.
func recordDocument(record *domain.PlayRecord) bson.D {
	transcript := bson.A{}
	for _, speaker := range record.Transcript.Speakers() {
		transcript = append(transcript, bson.D{
			{Key: "speaker", Value: speaker},
			{Key: "lines", Value: record.Transcript.Lines(speaker)},
		})
	}

	return bson.D{
		{Key: "name", Value: record.Name},
		{Key: "source_url", Value: record.SourceURL},
		{Key: "strategy", Value: string(record.Strategy)},
		{Key: "inline_votes", Value: record.InlineVotes},
		{Key: "block_votes", Value: record.BlockVotes},
		{Key: "trim_start", Value: record.TrimStart},
		{Key: "trim_end", Value: record.TrimEnd},
		{Key: "speaker_count", Value: record.SpeakerCount()},
		{Key: "line_count", Value: record.LineCount()},
		{Key: "transcript", Value: transcript},
		{Key: "run_id", Value: record.RunID},
		{Key: "extracted_at", Value: record.ExtractedAt.UTC()},
	}
}
