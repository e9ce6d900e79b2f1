package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Booking struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	EventID   primitive.ObjectID `json:"eventId" bson:"eventId"`
	Email     string             `json:"email" bson:"email"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type BookingInput struct {
	EventID string `json:"eventId" validate:"required,objectid"`
	Email   string `json:"email" validate:"required,emailaddr"`
}
