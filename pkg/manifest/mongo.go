package manifest

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/nbenv/pkg/errors"
)

// DefaultMongoID is the document ID used when none is configured.
const DefaultMongoID = "default"

// MongoCollection is the subset of *mongo.Collection used by [MongoSink].
type MongoCollection interface {
	ReplaceOne(ctx context.Context, filter any, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
}

// MongoSink keeps one document per environment, replaced in full on every
// publish.
type MongoSink struct {
	coll MongoCollection
	id   string
	now  func() time.Time
}

type mongoDoc struct {
	ID        string    `bson:"_id"`
	Packages  []string  `bson:"packages"`
	RunID     string    `bson:"run_id,omitempty"`
	Source    string    `bson:"source,omitempty"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoSink returns a sink writing to the document id in coll.
func NewMongoSink(coll MongoCollection, id string) *MongoSink {
	if id == "" {
		id = DefaultMongoID
	}
	return &MongoSink{coll: coll, id: id, now: time.Now}
}

// DialMongo connects to uri and returns the named collection with a close
// function for the client.
func DialMongo(ctx context.Context, uri, database, collection string) (*mongo.Collection, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	return client.Database(database).Collection(collection), client.Disconnect, nil
}

// Publish implements [Publisher].
func (s *MongoSink) Publish(ctx context.Context, m *Manifest) error {
	if m == nil {
		m = &Manifest{}
	}
	doc := mongoDoc{
		ID:        s.id,
		Packages:  m.clone().Packages,
		RunID:     m.RunID,
		Source:    m.Source,
		UpdatedAt: s.now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": s.id}, doc, opts); err != nil {
		return fmt.Errorf("mongo replace %s: %w", s.id, err)
	}
	return nil
}

// Load returns the stored manifest, or nil if the document does not exist.
func (s *MongoSink) Load(ctx context.Context) (*Manifest, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": s.id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", s.id, err)
	}
	return &Manifest{Packages: nonNil(doc.Packages), RunID: doc.RunID, Source: doc.Source}, nil
}

var _ Publisher = (*MongoSink)(nil)
