package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-logr/logr"
	"github.com/redis/go-redis/v9"
)

// Option configures redis persisters
type Option func(*store)

// WithLogger sets logger for the persister
func WithLogger(l logr.Logger) Option {
	return func(s *store) {
		s.log = l
	}
}

// WithPrefix sets the prefix of all keys and channels used by the persister
func WithPrefix(prefix string) Option {
	return func(s *store) {
		s.prefix = prefix
	}
}

// WithTimeout sets the timeout of every single redis operation
func WithTimeout(d time.Duration) Option {
	return func(s *store) {
		s.timeout = d
	}
}

type store struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
	log     logr.Logger
}

func newStore(client redis.UniversalClient, opts ...Option) *store {
	s := &store{
		client:  client,
		prefix:  "accessgate",
		timeout: 5 * time.Second,
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *store) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (s *store) op() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *store) publish(ctx context.Context, channel string, change interface{}) error {
	raw, e := json.Marshal(change)
	if e != nil {
		return e
	}
	return s.client.Publish(ctx, channel, raw).Err()
}

// watch subscribes to channel and decodes every message as a C, until ctx is done
func watch[C any](ctx context.Context, s *store, channel string) (<-chan C, error) {
	sub := s.client.Subscribe(ctx, channel)
	if _, e := sub.Receive(ctx); e != nil {
		_ = sub.Close()
		return nil, e
	}

	out := make(chan C)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change C
				if e := json.Unmarshal([]byte(msg.Payload), &change); e != nil {
					s.log.Error(e, "decode change", "channel", channel, "payload", msg.Payload)
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
