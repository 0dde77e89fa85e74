package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// JSONFile loads a JSON file into a MongoDB collection. A top-level object
// inserts one document; a top-level array inserts one document per element.
// Returns the number of documents inserted.
func JSONFile(ctx context.Context, db *mongo.Database, path, collection string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open json: %w", err)
	}
	defer f.Close()
	return JSON(ctx, db, f, collection)
}

// JSON loads JSON data from r into the named collection.
func JSON(ctx context.Context, db *mongo.Database, r io.Reader, collection string) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read json: %w", err)
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("parse json: %w", err)
	}

	coll := db.Collection(collection)
	switch v := payload.(type) {
	case map[string]any:
		if _, err := coll.InsertOne(ctx, bson.M(v)); err != nil {
			return 0, fmt.Errorf("insert document: %w", err)
		}
		return 1, nil
	case []any:
		if len(v) == 0 {
			return 0, nil
		}
		docs := make([]any, 0, len(v))
		for i, elem := range v {
			obj, ok := elem.(map[string]any)
			if !ok {
				return 0, fmt.Errorf("array element %d is not an object", i)
			}
			docs = append(docs, bson.M(obj))
		}
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			return 0, fmt.Errorf("insert documents: %w", err)
		}
		return len(docs), nil
	default:
		return 0, fmt.Errorf("top-level json value must be an object or an array, got %T", payload)
	}
}
