package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultBatchSize is the cursor batch size used when the caller passes
// zero. Large enough that typical result sets arrive in one round trip.
const DefaultBatchSize = 1000

// Document executes stage sequences against a MongoDB database.
type Document struct {
	client   *mongo.Client
	database string
}

// ConnectDocument dials the deployment at uri and verifies it responds
// before returning an executor bound to the named database.
func ConnectDocument(ctx context.Context, uri, database string) (*Document, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, &ExecutionError{Code: ErrCodeConnection, Backend: "document", Err: err}
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, &ExecutionError{Code: ErrCodeConnection, Backend: "document", Err: err}
	}
	return &Document{client: client, database: database}, nil
}

// NewDocument wraps an already-connected client.
func NewDocument(client *mongo.Client, database string) *Document {
	return &Document{client: client, database: database}
}

// Close disconnects from the deployment.
func (d *Document) Close(ctx context.Context) error {
	if d.client == nil {
		return nil
	}
	return d.client.Disconnect(ctx)
}

// Client returns the underlying client for collection discovery and
// ingestion.
func (d *Document) Client() *mongo.Client {
	return d.client
}

// Database returns the name of the bound database.
func (d *Document) Database() string {
	return d.database
}

// Aggregate runs the stage sequence against the named collection and
// materializes every document. Column order follows the first document's
// key order; documents decode as bson.D so the server's field order
// survives.
func (d *Document) Aggregate(ctx context.Context, collection string, stages []bson.D, batchSize int32) (*Result, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	rendered := renderStages(collection, stages)

	coll := d.client.Database(d.database).Collection(collection)
	opts := options.Aggregate().SetBatchSize(batchSize).SetAllowDiskUse(true)
	cursor, err := coll.Aggregate(ctx, stages, opts)
	if err != nil {
		return nil, &ExecutionError{Code: ErrCodeQueryFailed, Backend: "document", Query: rendered, Err: err}
	}
	defer cursor.Close(ctx)

	result := &Result{Rows: []map[string]any{}}
	seen := map[string]bool{}
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return nil, &ExecutionError{Code: ErrCodeDecode, Backend: "document", Query: rendered, Err: err}
		}
		row := make(map[string]any, len(doc))
		for _, elem := range doc {
			if !seen[elem.Key] {
				seen[elem.Key] = true
				result.Columns = append(result.Columns, elem.Key)
			}
			row[elem.Key] = elem.Value
		}
		result.Rows = append(result.Rows, row)
	}
	if err := cursor.Err(); err != nil {
		return nil, &ExecutionError{Code: ErrCodeDecode, Backend: "document", Query: rendered, Err: err}
	}
	return result, nil
}

// renderStages produces a compact diagnostic rendering of a pipeline for
// error messages.
func renderStages(collection string, stages []bson.D) string {
	encoded, err := json.Marshal(stages)
	if err != nil {
		return collection
	}
	return fmt.Sprintf("%s: %s", collection, encoded)
}
