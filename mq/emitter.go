// Package mq publishes write notifications to Redis pub/sub. Publishing is
// best effort: failures are logged and never reach the caller.
package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Channel is the pub/sub channel notifications go to.
const Channel = "devevent-notifications"

const publishTimeout = 2 * time.Second

// Notification describes one successful write.
type Notification struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Slug       string `json:"slug,omitempty"`
	EventID    string `json:"event_id,omitempty"`
}

// Message is the wire form published on Channel.
type Message struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
	Notification
}

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type Emitter struct {
	pub publisher
	log zerolog.Logger
	now func() time.Time
}

// NewEmitter returns an emitter on client. A nil client gives an emitter
// that drops everything.
func NewEmitter(client *redis.Client, log zerolog.Logger) *Emitter {
	e := &Emitter{log: log, now: time.Now}
	if client != nil {
		e.pub = client
	}
	return e
}

// Emit publishes name with n. Safe on a nil *Emitter.
func (e *Emitter) Emit(ctx context.Context, name string, n Notification) {
	if e == nil || e.pub == nil {
		return
	}

	data, err := json.Marshal(Message{Name: name, At: e.now().UTC(), Notification: n})
	if err != nil {
		e.log.Error().Err(err).Str("name", name).Msg("[Emit] marshal failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := e.pub.Publish(ctx, Channel, data).Err(); err != nil {
		e.log.Warn().Err(err).Str("name", name).Msg("[Emit] publish failed")
		return
	}
	e.log.Debug().Str("name", name).Str("entity_id", n.EntityID).Msg("[Emit] published")
}
