package db

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"lexhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var MongoClient *mongo.Client
var MongoDatabase *mongo.Database
var SessionCollection *mongo.Collection

// GetCollection returns a collection by name
func GetCollection(collectionName string) *mongo.Collection {
	return MongoDatabase.Collection(collectionName)
}

// extractDBName parses the database name from the URI, defaulting to "lexhub"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "lexhub"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:]
	}
	return "lexhub"
}

// ConnectMongoDB establishes a connection to MongoDB using the provided URI
func ConnectMongoDB(uri string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoClient = client
	dbName := extractDBName(uri)
	log.Printf("Using database: %s", dbName)

	MongoDatabase = client.Database(dbName)
	SessionCollection = MongoDatabase.Collection("sessions")
	return nil
}

// LoadCaseContent reads the issue catalog and the fact/law lookup tables
// into memory. The engine only ever reads the returned maps.
func LoadCaseContent() (*models.CaseContent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	content := models.NewCaseContent()

	cursor, err := MongoDatabase.Collection("issues").Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load issues: %w", err)
	}
	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("failed to decode issues: %w", err)
	}
	for i := range issues {
		content.Issues[issues[i].ID] = &issues[i]
	}

	cursor, err = MongoDatabase.Collection("facts").Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load facts: %w", err)
	}
	var facts []models.Fact
	if err := cursor.All(ctx, &facts); err != nil {
		return nil, fmt.Errorf("failed to decode facts: %w", err)
	}
	for _, f := range facts {
		content.Facts[f.ID] = f.Content
	}

	cursor, err = MongoDatabase.Collection("laws").Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load laws: %w", err)
	}
	var laws []models.Law
	if err := cursor.All(ctx, &laws); err != nil {
		return nil, fmt.Errorf("failed to decode laws: %w", err)
	}
	for _, l := range laws {
		content.Laws[l.ID] = l.Content
	}

	log.Printf("Loaded case content: %d issues, %d facts, %d laws",
		len(content.Issues), len(content.Facts), len(content.Laws))
	return content, nil
}

// ArchiveSession stores a completed session aggregate. The engine never
// reads it back; failures are logged and swallowed.
func ArchiveSession(session *models.SocraticSession) {
	if SessionCollection == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := SessionCollection.InsertOne(ctx, session); err != nil {
		log.Printf("Error archiving session %s: %v", session.ID, err)
	}
}
