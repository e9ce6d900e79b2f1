package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
	ModeHybrid  Mode = "hybrid"
)

// Event is the persisted form. Slug, Date and Time are always normalized.
type Event struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Slug        string             `json:"slug" bson:"slug"`
	Description string             `json:"description" bson:"description"`
	Overview    string             `json:"overview" bson:"overview"`
	Image       string             `json:"image" bson:"image"`
	Venue       string             `json:"venue" bson:"venue"`
	Location    string             `json:"location" bson:"location"`
	Date        string             `json:"date" bson:"date"`
	Time        string             `json:"time" bson:"time"`
	Mode        Mode               `json:"mode" bson:"mode"`
	Audience    string             `json:"audience" bson:"audience"`
	Agenda      []string           `json:"agenda" bson:"agenda"`
	Organizer   string             `json:"organizer" bson:"organizer"`
	Tags        []string           `json:"tags" bson:"tags"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// EventInput is the draft a caller submits. Date and Time are raw and get
// normalized before anything is written.
type EventInput struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Description string   `json:"description" validate:"required,max=1000"`
	Overview    string   `json:"overview" validate:"required,max=500"`
	Image       string   `json:"image" validate:"required"`
	Venue       string   `json:"venue" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	Date        string   `json:"date" validate:"required"`
	Time        string   `json:"time" validate:"required"`
	Mode        string   `json:"mode" validate:"required,oneof=online offline hybrid"`
	Audience    string   `json:"audience" validate:"required"`
	Agenda      []string `json:"agenda" validate:"required,min=1,dive,required"`
	Organizer   string   `json:"organizer" validate:"required"`
	Tags        []string `json:"tags" validate:"required,min=1,dive,required"`
}

// EventPatch carries the fields an update touches. Nil means unchanged.
type EventPatch struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Overview    *string  `json:"overview,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Venue       *string  `json:"venue,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Date        *string  `json:"date,omitempty"`
	Time        *string  `json:"time,omitempty"`
	Mode        *string  `json:"mode,omitempty"`
	Audience    *string  `json:"audience,omitempty"`
	Agenda      []string `json:"agenda,omitempty"`
	Organizer   *string  `json:"organizer,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Input returns the event's current values as a draft, so a patched copy can
// go through the same validation as a create.
func (e *Event) Input() EventInput {
	return EventInput{
		Title:       e.Title,
		Description: e.Description,
		Overview:    e.Overview,
		Image:       e.Image,
		Venue:       e.Venue,
		Location:    e.Location,
		Date:        e.Date,
		Time:        e.Time,
		Mode:        string(e.Mode),
		Audience:    e.Audience,
		Agenda:      append([]string(nil), e.Agenda...),
		Organizer:   e.Organizer,
		Tags:        append([]string(nil), e.Tags...),
	}
}

// Apply overlays the non-nil patch fields on in.
func (p EventPatch) Apply(in EventInput) EventInput {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&in.Title, p.Title)
	set(&in.Description, p.Description)
	set(&in.Overview, p.Overview)
	set(&in.Image, p.Image)
	set(&in.Venue, p.Venue)
	set(&in.Location, p.Location)
	set(&in.Date, p.Date)
	set(&in.Time, p.Time)
	set(&in.Mode, p.Mode)
	set(&in.Audience, p.Audience)
	set(&in.Organizer, p.Organizer)
	if p.Agenda != nil {
		in.Agenda = p.Agenda
	}
	if p.Tags != nil {
		in.Tags = p.Tags
	}
	return in
}
