// Package natsbus ships governance events over NATS.
package natsbus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CosmWasm/tinyjson"
	"github.com/nats-io/nats.go"

	"dao_gov/contract"
)

// DefaultSubjectPrefix is the subject root events are published under,
// one subject per kind: dao.events.vote_cast and so on.
const DefaultSubjectPrefix = "dao.events"

// Publisher is the slice of *nats.Conn the bus needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Bus is a contract.EventSink that publishes every event as JSON.
type Bus struct {
	conn   Publisher
	prefix string
}

var _ contract.EventSink = (*Bus)(nil)

// New returns a bus publishing on conn under prefix.
func New(conn Publisher, prefix string) *Bus {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Bus{conn: conn, prefix: prefix}
}

// Subject returns the subject events of kind are published on.
func (b *Bus) Subject(kind contract.EventKind) string {
	return b.prefix + "." + string(kind)
}

// Wildcard matches every event kind under the bus prefix.
func (b *Bus) Wildcard() string {
	return b.prefix + ".>"
}

// Emit publishes ev. NATS Publish does not take a context, so it is only
// checked before sending.
func (b *Bus) Emit(ctx context.Context, ev contract.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := tinyjson.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := b.Subject(ev.Kind)
	if err := b.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	log.Tracef("published %s on %s", ev.ID, subject)
	return nil
}

// Connect dials the NATS server at url.
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return conn, nil
}

// Decode parses an event message.
func Decode(msg *nats.Msg) (contract.Event, error) {
	var ev contract.Event
	if err := tinyjson.Unmarshal(msg.Data, &ev); err != nil {
		return contract.Event{}, fmt.Errorf("decode event on %s: %w", msg.Subject, err)
	}
	return ev, nil
}

// Handler turns fn into a nats.MsgHandler. Undecodable messages are logged
// and dropped.
func Handler(fn func(contract.Event)) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ev, err := Decode(msg)
		if err != nil {
			log.Warnf("%v", err)
			return
		}
		fn(ev)
	}
}

// Watch subscribes to all events under the bus prefix and calls fn for
// each until ctx is done.
func (b *Bus) Watch(ctx context.Context, conn *nats.Conn, fn func(contract.Event)) error {
	sub, err := conn.Subscribe(b.Wildcard(), Handler(fn))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", b.Wildcard(), err)
	}
	defer func() { _ = sub.Unsubscribe() }()
	if err := conn.Flush(); err != nil {
		return fmt.Errorf("flush subscription: %w", err)
	}
	<-ctx.Done()
	return nil
}
