package booking

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
)

const opTimeout = 5 * time.Second

type Connector interface {
	Connect(ctx context.Context) (*db.Conn, error)
}

// MongoRepository stores bookings in the bookings collection.
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
	return conn.Bookings, nil
}

func (r *MongoRepository) Insert(ctx context.Context, b *models.Booking) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if _, err := coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var b models.Booking
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &errs.NotFoundError{Entity: "booking", Key: id.Hex()}
		}
		return nil, fmt.Errorf("find booking %s: %w", id.Hex(), err)
	}
	return &b, nil
}

func (r *MongoRepository) FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Booking, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := coll.Find(ctx, bson.M{"eventId": eventID})
	if err != nil {
		return nil, fmt.Errorf("find bookings for %s: %w", eventID.Hex(), err)
	}
	defer cur.Close(ctx)

	var out []models.Booking
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode bookings for %s: %w", eventID.Hex(), err)
	}
	return out, nil
}

func (r *MongoRepository) SetEvent(ctx context.Context, id, eventID primitive.ObjectID, at time.Time) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"eventId": eventID, "updatedAt": at}},
	)
	if err != nil {
		return fmt.Errorf("update booking %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return &errs.NotFoundError{Entity: "booking", Key: id.Hex()}
	}
	return nil
}
