// Package booking owns the Booking record. A booking can only point at an
// event that exists at the moment its eventId is set.
package booking

import (
	"context"
	"strings"
	"time"

	"devevent/errs"
	"devevent/models"
	"devevent/mq"
	"devevent/validation"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventChecker answers the referential check. *events.Store satisfies it.
type EventChecker interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// Repository persists bookings. FindByID returns *errs.NotFoundError when
// nothing matches.
type Repository interface {
	Insert(ctx context.Context, b *models.Booking) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Booking, error)
	SetEvent(ctx context.Context, id, eventID primitive.ObjectID, at time.Time) error
}

type Notifier interface {
	Emit(ctx context.Context, name string, n mq.Notification)
}

type Store struct {
	repo     Repository
	events   EventChecker
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(repo Repository, events EventChecker, opts ...Option) *Store {
	s := &Store{repo: repo, events: events, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates in, checks the referenced event exists, then inserts.
// The email is stored trimmed and lowercased.
func (s *Store) Create(ctx context.Context, in models.BookingInput) (*models.Booking, error) {
	in.EventID = strings.TrimSpace(in.EventID)
	in.Email = strings.ToLower(validation.TrimSpace(in.Email))

	if verr := validation.Struct(in); verr != nil {
		return nil, verr
	}
	eventID, _ := primitive.ObjectIDFromHex(in.EventID)

	if err := s.checkEvent(ctx, eventID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	b := &models.Booking{
		EventID:   eventID,
		Email:     in.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, b); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", b.ID.Hex()).Str("event_id", eventID.Hex()).Msg("[booking] created")
	s.emit(ctx, "booking-created", b)
	return b, nil
}

// FindByEvent returns every booking for eventID, in no particular order.
func (s *Store) FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Booking, error) {
	out, err := s.repo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Booking{}
	}
	return out, nil
}

// ChangeEvent moves a booking to another event. The referential check runs
// again because eventId is changing; an unchanged eventId is a no-op.
func (s *Store) ChangeEvent(ctx context.Context, bookingID, eventID string) (*models.Booking, error) {
	id, idErr := primitive.ObjectIDFromHex(strings.TrimSpace(bookingID))
	target, targetErr := primitive.ObjectIDFromHex(strings.TrimSpace(eventID))

	verr := &errs.ValidationError{}
	if idErr != nil {
		verr.Fields = append(verr.Fields, errs.FieldError{Field: "id", Error: "must be a valid id"})
	}
	if targetErr != nil {
		verr.Fields = append(verr.Fields, errs.FieldError{Field: "eventId", Error: "must be a valid id"})
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.EventID == target {
		return b, nil
	}

	if err := s.checkEvent(ctx, target); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.repo.SetEvent(ctx, id, target, now); err != nil {
		return nil, err
	}
	b.EventID = target
	b.UpdatedAt = now

	s.log.Info().Str("id", b.ID.Hex()).Str("event_id", target.Hex()).Msg("[booking] moved")
	s.emit(ctx, "booking-updated", b)
	return b, nil
}

func (s *Store) checkEvent(ctx context.Context, eventID primitive.ObjectID) error {
	ok, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return err
	}
	if !ok {
		return &errs.ReferentialIntegrityError{Field: "eventId", Ref: eventID.Hex()}
	}
	return nil
}

func (s *Store) emit(ctx context.Context, name string, b *models.Booking) {
	if s.notifier == nil {
		return
	}
	s.notifier.Emit(ctx, name, mq.Notification{
		EntityType: "booking",
		EntityID:   b.ID.Hex(),
		EventID:    b.EventID.Hex(),
	})
}
