package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	// seqField orders documents by insertion; it never leaves this file.
	seqField           = "_seq"
	sequenceCollection = "_sequences"
)

type mongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo opens a client, pings the primary and returns a Store over
// the named database. Each document collection maps to a Mongo collection
// and each document id to its _id.
func ConnectMongo(ctx context.Context, uri, database string) (Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &mongoStore{client: client, db: client.Database(database)}, nil
}

func (s *mongoStore) List(ctx context.Context, collection string) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: seqField, Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}

	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		rec, err := fromBSON(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *mongoStore) Get(ctx context.Context, collection, id string) (Record, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("failed to get document: %w", err)
	}
	return fromBSON(raw)
}

func (s *mongoStore) Set(ctx context.Context, collection, id string, doc Document) error {
	coll := s.db.Collection(collection)
	filter := bson.D{{Key: "_id", Value: id}}

	var existing struct {
		Seq int64 `bson:"_seq"`
	}
	err := coll.FindOne(ctx, filter, options.FindOne().SetProjection(bson.D{{Key: seqField, Value: 1}})).Decode(&existing)
	seq := existing.Seq
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		if seq, err = s.nextSeq(ctx, collection); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("failed to look up document: %w", err)
	}

	replacement := toBSON(doc)
	replacement["_id"] = id
	replacement[seqField] = seq

	if _, err := coll.ReplaceOne(ctx, filter, replacement, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}
	return nil
}

// nextSeq atomically increments the per-collection insertion counter.
func (s *mongoStore) nextSeq(ctx context.Context, collection string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.db.Collection(sequenceCollection).FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: collection}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate document sequence: %w", err)
	}
	return counter.Seq, nil
}

func (s *mongoStore) Update(ctx context.Context, collection, id string, patch Document) error {
	coll := s.db.Collection(collection)
	filter := bson.D{{Key: "_id", Value: id}}

	// $set rejects an empty document, so an empty patch is an existence check.
	if len(patch) == 0 {
		n, err := coll.CountDocuments(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	}

	set := toBSON(patch)
	delete(set, "_id")
	delete(set, seqField)

	result, err := coll.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *mongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toBSON(doc Document) bson.M {
	m := make(bson.M, len(doc)+2)
	for k, v := range doc {
		m[k] = v
	}
	return m
}

// fromBSON normalises a raw Mongo document into the plain JSON shapes the
// rest of the service expects, via relaxed extended JSON.
func fromBSON(raw bson.M) (Record, error) {
	id := fmt.Sprint(raw["_id"])
	delete(raw, "_id")
	delete(raw, seqField)

	ext, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode document %s: %w", id, err)
	}

	doc := Document{}
	if err := json.Unmarshal(ext, &doc); err != nil {
		return Record{}, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return Record{ID: id, Data: doc}, nil
}
