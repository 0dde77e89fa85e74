package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DiscoverRelational builds a snapshot from the relational store's schema
// metadata: one entity per user table, fields in column order.
func DiscoverRelational(ctx context.Context, db *sql.DB) (*Snapshot, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	snapshot := &Snapshot{}
	for _, name := range names {
		fields, err := tableColumns(ctx, db, name)
		if err != nil {
			return nil, err
		}
		snapshot.Entities = append(snapshot.Entities, Entity{Name: name, Fields: fields})
	}
	return snapshot, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("describe table %s: %w", table, err)
	}
	defer rows.Close()

	var fields []string
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("describe table %s: %w", table, err)
		}
		fields = append(fields, name)
	}
	return fields, rows.Err()
}

// DiscoverDocument builds a snapshot from the document store by sampling
// one document per collection and reading its field names. A collection
// with no documents contributes an entity with no fields.
func DiscoverDocument(ctx context.Context, client *mongo.Client, database string) (*Snapshot, error) {
	db := client.Database(database)
	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	sort.Strings(names)

	snapshot := &Snapshot{}
	for _, name := range names {
		var sample bson.D
		err := db.Collection(name).FindOne(ctx, bson.D{}).Decode(&sample)
		if err != nil && err != mongo.ErrNoDocuments {
			return nil, fmt.Errorf("sample collection %s: %w", name, err)
		}
		snapshot.Entities = append(snapshot.Entities, Entity{Name: name, Fields: sampleFields(sample)})
	}
	return snapshot, nil
}

// sampleFields reads top-level field names from a sampled document,
// skipping the store's internal identifier.
func sampleFields(doc bson.D) []string {
	var fields []string
	for _, elem := range doc {
		if elem.Key == "_id" {
			continue
		}
		fields = append(fields, elem.Key)
	}
	return fields
}
