package db

import (
	"context"
	"sync"
	"time"

	"devevent/errs"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/singleflight"
)

const (
	EventsCollection   = "events"
	BookingsCollection = "bookings"

	defaultDialTimeout = 10 * time.Second
)

// State is the lifecycle position of a Manager.
type State int32

const (
	StateEmpty State = iota
	StateEstablishing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateEstablishing:
		return "establishing"
	case StateReady:
		return "ready"
	default:
		return "empty"
	}
}

// Conn is an established database handle with the collections the stores use.
type Conn struct {
	Client   *mongo.Client
	Database *mongo.Database
	Events   *mongo.Collection
	Bookings *mongo.Collection
}

// NewConn binds the collections of database on an already connected client.
func NewConn(client *mongo.Client, database string) *Conn {
	d := client.Database(database)
	return &Conn{
		Client:   client,
		Database: d,
		Events:   d.Collection(EventsCollection),
		Bookings: d.Collection(BookingsCollection),
	}
}

// EnsureIndexes creates the unique slug index on events and the eventId
// lookup index on bookings. Both calls are no-ops when the index exists.
func (c *Conn) EnsureIndexes(ctx context.Context) error {
	_, err := c.Events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("slug_unique"),
	})
	if err != nil {
		return err
	}
	_, err = c.Bookings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "eventId", Value: 1}},
		Options: options.Index().SetName("eventId_1"),
	})
	return err
}

// DialFunc establishes a fresh connection.
type DialFunc func(ctx context.Context, uri, database string) (*Conn, error)

// Dial connects to MongoDB, pings the primary and ensures indexes. The client
// is disconnected again if any step after mongo.Connect fails.
func Dial(ctx context.Context, uri, database string) (*Conn, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	conn := NewConn(client, database)
	if err := conn.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return conn, nil
}

// Manager owns the single process-wide connection. It is created at startup
// and connects lazily on first use.
type Manager struct {
	uri         string
	database    string
	dial        DialFunc
	dialTimeout time.Duration
	log         zerolog.Logger

	mu    sync.Mutex
	conn  *Conn
	state State

	// inflight collapses concurrent establishment attempts into one.
	inflight singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithDialer replaces the MongoDB dialer.
func WithDialer(d DialFunc) Option {
	return func(m *Manager) { m.dial = d }
}

// WithDialTimeout bounds each establishment attempt.
func WithDialTimeout(d time.Duration) Option {
	return func(m *Manager) { m.dialTimeout = d }
}

// WithLogger sets the manager's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager returns a Manager for uri. An empty uri is a configuration error.
func NewManager(uri, database string, opts ...Option) (*Manager, error) {
	if uri == "" {
		return nil, &errs.ConfigurationError{Key: "MONGODB_URI", Reason: "is required"}
	}
	m := &Manager{
		uri:         uri,
		database:    database,
		dial:        Dial,
		dialTimeout: defaultDialTimeout,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Connect returns the cached connection, joins an attempt already in flight,
// or starts one. A failed attempt leaves the manager empty so the next call
// dials again.
func (m *Manager) Connect(ctx context.Context) (*Conn, error) {
	if c := m.cached(); c != nil {
		return c, nil
	}

	v, err, shared := m.inflight.Do(m.uri, func() (any, error) {
		m.mu.Lock()
		if m.conn != nil {
			c := m.conn
			m.mu.Unlock()
			return c, nil
		}
		m.state = StateEstablishing
		m.mu.Unlock()

		// Joiners share this attempt, so one caller's cancellation must not
		// fail everyone else.
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.dialTimeout)
		defer cancel()

		start := time.Now()
		conn, err := m.dial(dctx, m.uri, m.database)

		m.mu.Lock()
		defer m.mu.Unlock()
		if err != nil {
			m.state = StateEmpty
			m.log.Error().Err(err).Dur("took", time.Since(start)).Msg("[db] connect failed")
			return nil, &errs.ConnectionError{Err: err}
		}
		m.conn = conn
		m.state = StateReady
		m.log.Info().Str("database", m.database).Dur("took", time.Since(start)).Msg("[db] connected")
		return conn, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		m.log.Debug().Msg("[db] joined in-flight connect")
	}
	return v.(*Conn), nil
}

func (m *Manager) cached() *Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn
}

// State reports where the manager is in its lifecycle.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Close disconnects the cached client, if any. Only called at shutdown.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.state = StateEmpty
	m.mu.Unlock()

	if conn == nil || conn.Client == nil {
		return nil
	}
	return conn.Client.Disconnect(ctx)
}
