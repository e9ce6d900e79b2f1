// Package events owns the Event record: validation, slug and date/time
// normalization, persistence, and the HTTP handlers for the events routes.
package events

import (
	"context"
	"strings"
	"time"

	"devevent/errs"
	"devevent/models"
	"devevent/mq"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository persists events. Insert and Replace return
// *errs.UniqueConstraintError on a slug collision; lookups return
// *errs.NotFoundError when nothing matches.
type Repository interface {
	Insert(ctx context.Context, ev *models.Event) error
	FindBySlug(ctx context.Context, slug string) (*models.Event, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	Replace(ctx context.Context, ev *models.Event) error
}

// Notifier is told about successful writes.
type Notifier interface {
	Emit(ctx context.Context, name string, n mq.Notification)
}

type Store struct {
	repo     Repository
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

func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{repo: repo, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and normalizes in, then inserts it. Nothing is written
// when validation fails.
func (s *Store) Create(ctx context.Context, in models.EventInput) (*models.Event, error) {
	ev, err := ValidateAndNormalize(in)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	ev.CreatedAt, ev.UpdatedAt = now, now

	if err := s.repo.Insert(ctx, ev); err != nil {
		return nil, err
	}

	s.log.Info().Str("slug", ev.Slug).Str("id", ev.ID.Hex()).Msg("[events] created")
	s.emit(ctx, "event-created", ev)
	return ev, nil
}

// FindBySlug looks an event up by slug, ignoring case and surrounding space.
func (s *Store) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	key := strings.ToLower(strings.TrimSpace(slug))
	if key == "" {
		return nil, errs.NewValidationError("slug", "is required")
	}
	return s.repo.FindBySlug(ctx, key)
}

// Exists reports whether an event with id is stored.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// Update applies patch to the event stored under slug. The slug is only
// recomputed when the title actually changes, so editing other fields never
// moves an event's URL.
func (s *Store) Update(ctx context.Context, slug string, patch models.EventPatch) (*models.Event, error) {
	current, err := s.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	next, err := ValidateAndNormalize(patch.Apply(current.Input()))
	if err != nil {
		return nil, err
	}
	if next.Title == current.Title && current.Slug != "" {
		next.Slug = current.Slug
	}
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = s.now().UTC()

	if err := s.repo.Replace(ctx, next); err != nil {
		return nil, err
	}

	s.log.Info().Str("slug", next.Slug).Str("id", next.ID.Hex()).Msg("[events] updated")
	s.emit(ctx, "event-updated", next)
	return next, nil
}

func (s *Store) emit(ctx context.Context, name string, ev *models.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Emit(ctx, name, mq.Notification{
		EntityType: "event",
		EntityID:   ev.ID.Hex(),
		Slug:       ev.Slug,
	})
}
