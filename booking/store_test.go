package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"devevent/errs"
	"devevent/models"
	"devevent/mq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRepo struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Booking
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[primitive.ObjectID]models.Booking)}
}

func (f *fakeRepo) Insert(ctx context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = primitive.NewObjectID()
	f.byID[b.ID] = *b
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return nil, &errs.NotFoundError{Entity: "booking", Key: id.Hex()}
	}
	return &b, nil
}

func (f *fakeRepo) FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.byID {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) SetEvent(ctx context.Context, id, eventID primitive.ObjectID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return &errs.NotFoundError{Entity: "booking", Key: id.Hex()}
	}
	b.EventID, b.UpdatedAt = eventID, at
	f.byID[id] = b
	return nil
}

// fakeEvents is the set of event ids that exist.
type fakeEvents struct {
	ids   map[primitive.ObjectID]bool
	err   error
	calls int
}

func (f *fakeEvents) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.ids[id], nil
}

type recordingNotifier struct{ names []string }

func (r *recordingNotifier) Emit(ctx context.Context, name string, n mq.Notification) {
	r.names = append(r.names, name)
}

func setup() (*Store, *fakeRepo, *fakeEvents, primitive.ObjectID) {
	eventID := primitive.NewObjectID()
	repo := newFakeRepo()
	ev := &fakeEvents{ids: map[primitive.ObjectID]bool{eventID: true}}
	return NewStore(repo, ev), repo, ev, eventID
}

func TestCreate(t *testing.T) {
	store, repo, _, eventID := setup()
	notes := &recordingNotifier{}
	store.notifier = notes

	b, err := store.Create(context.Background(), models.BookingInput{
		EventID: eventID.Hex(),
		Email:   "  Ada.Lovelace@Example.COM ",
	})
	require.NoError(t, err)

	assert.False(t, b.ID.IsZero())
	assert.Equal(t, eventID, b.EventID)
	assert.Equal(t, "ada.lovelace@example.com", b.Email)
	assert.False(t, b.CreatedAt.IsZero())
	assert.Len(t, repo.byID, 1)
	assert.Equal(t, []string{"booking-created"}, notes.names)
}

func TestCreate_UnknownEvent(t *testing.T) {
	store, repo, _, _ := setup()
	missing := primitive.NewObjectID()

	b, err := store.Create(context.Background(), models.BookingInput{EventID: missing.Hex(), Email: "ada@example.com"})
	assert.Nil(t, b)

	var rerr *errs.ReferentialIntegrityError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, missing.Hex(), rerr.Ref)
	assert.Empty(t, repo.byID)
}

func TestCreate_ValidationRunsBeforeReferentialCheck(t *testing.T) {
	store, repo, ev, eventID := setup()

	tests := []struct {
		name   string
		in     models.BookingInput
		fields []string
	}{
		{"bad email", models.BookingInput{EventID: eventID.Hex(), Email: "not-an-email"}, []string{"email"}},
		{"blank email", models.BookingInput{EventID: eventID.Hex(), Email: "   "}, []string{"email"}},
		{"bad event id", models.BookingInput{EventID: "123", Email: "ada@example.com"}, []string{"eventId"}},
		{"both", models.BookingInput{}, []string{"eventId", "email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(context.Background(), tt.in)
			var verr *errs.ValidationError
			require.ErrorAs(t, err, &verr)
			for _, f := range tt.fields {
				assert.True(t, verr.Has(f), "missing %s", f)
			}
		})
	}
	assert.Zero(t, ev.calls)
	assert.Empty(t, repo.byID)
}

func TestCreate_CheckerErrorPropagates(t *testing.T) {
	store, repo, ev, eventID := setup()
	ev.err = &errs.ConnectionError{Err: errors.New("no reachable servers")}

	_, err := store.Create(context.Background(), models.BookingInput{EventID: eventID.Hex(), Email: "ada@example.com"})
	var cerr *errs.ConnectionError
	require.ErrorAs(t, err, &cerr)
	assert.Empty(t, repo.byID)
}

func TestFindByEvent(t *testing.T) {
	store, _, ev, eventID := setup()
	other := primitive.NewObjectID()
	ev.ids[other] = true

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := store.Create(context.Background(), models.BookingInput{EventID: eventID.Hex(), Email: email})
		require.NoError(t, err)
	}
	_, err := store.Create(context.Background(), models.BookingInput{EventID: other.Hex(), Email: "c@example.com"})
	require.NoError(t, err)

	list, err := store.FindByEvent(context.Background(), eventID)
	require.NoError(t, err)
	emails := []string{list[0].Email, list[1].Email}
	assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, emails)
	assert.Len(t, list, 2)

	none, err := store.FindByEvent(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestChangeEvent(t *testing.T) {
	store, repo, ev, eventID := setup()
	b, err := store.Create(context.Background(), models.BookingInput{EventID: eventID.Hex(), Email: "ada@example.com"})
	require.NoError(t, err)

	t.Run("to missing event is rejected", func(t *testing.T) {
		_, err := store.ChangeEvent(context.Background(), b.ID.Hex(), primitive.NewObjectID().Hex())
		var rerr *errs.ReferentialIntegrityError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, eventID, repo.byID[b.ID].EventID)
	})

	t.Run("unchanged skips the check", func(t *testing.T) {
		before := ev.calls
		got, err := store.ChangeEvent(context.Background(), b.ID.Hex(), eventID.Hex())
		require.NoError(t, err)
		assert.Equal(t, eventID, got.EventID)
		assert.Equal(t, before, ev.calls)
	})

	t.Run("to existing event", func(t *testing.T) {
		next := primitive.NewObjectID()
		ev.ids[next] = true
		got, err := store.ChangeEvent(context.Background(), b.ID.Hex(), next.Hex())
		require.NoError(t, err)
		assert.Equal(t, next, got.EventID)
		assert.Equal(t, next, repo.byID[b.ID].EventID)
	})

	t.Run("bad ids", func(t *testing.T) {
		_, err := store.ChangeEvent(context.Background(), "x", "y")
		var verr *errs.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("id"))
		assert.True(t, verr.Has("eventId"))
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := store.ChangeEvent(context.Background(), primitive.NewObjectID().Hex(), eventID.Hex())
		assert.True(t, errs.IsNotFound(err))
	})
}

func TestCreate_UnicodeWhitespace(t *testing.T) {
	store, repo, _, eventID := setup()

	b, err := store.Create(context.Background(), models.BookingInput{
		EventID: eventID.Hex(),
		Email:   "\ufeff\u00a0Ada@Example.com\u2003",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", b.Email)

	_, err = store.Create(context.Background(), models.BookingInput{EventID: eventID.Hex(), Email: "a\u00a0b@x.com"})
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("email"))
	assert.Len(t, repo.byID, 1)
}
