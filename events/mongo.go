package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devevent/db"
	"devevent/errs"
	"devevent/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const opTimeout = 5 * time.Second

// Connector hands out the shared database connection.
type Connector interface {
	Connect(ctx context.Context) (*db.Conn, error)
}

// MongoRepository stores events in the events collection. Every call goes
// through the Connector, which is a cache hit after the first success.
type MongoRepository struct {
	conns Connector
}

func NewMongoRepository(conns Connector) *MongoRepository {
	return &MongoRepository{conns: conns}
}

func (r *MongoRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	conn, err := r.conns.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return conn.Events, nil
}

func (r *MongoRepository) Insert(ctx context.Context, ev *models.Event) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if ev.ID.IsZero() {
		ev.ID = primitive.NewObjectID()
	}
	if _, err := coll.InsertOne(ctx, ev); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &errs.UniqueConstraintError{Field: "slug", Value: ev.Slug}
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var ev models.Event
	if err := coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&ev); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &errs.NotFoundError{Entity: "event", Key: slug}
		}
		return nil, fmt.Errorf("find event %q: %w", slug, err)
	}
	return &ev, nil
}

func (r *MongoRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count event %s: %w", id.Hex(), err)
	}
	return n > 0, nil
}

func (r *MongoRepository) Replace(ctx context.Context, ev *models.Event) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := coll.ReplaceOne(ctx, bson.M{"_id": ev.ID}, ev)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &errs.UniqueConstraintError{Field: "slug", Value: ev.Slug}
		}
		return fmt.Errorf("replace event %s: %w", ev.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return &errs.NotFoundError{Entity: "event", Key: ev.ID.Hex()}
	}
	return nil
}
