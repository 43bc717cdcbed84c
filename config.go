package accessgate

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-logr/stdr"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"github.com/supremind/accessgate/ledger/memory"
	redisledger "github.com/supremind/accessgate/ledger/redis"
	redispersist "github.com/supremind/accessgate/persist/redis"
	"github.com/supremind/accessgate/types"
)

// EnvConfig is the gate configuration read from environment variables
type EnvConfig struct {
	Owner        string        `envconfig:"OWNER" required:"true"`
	Admins       []string      `envconfig:"ADMINS"`
	RedisAddr    string        `envconfig:"REDIS_ADDR"`
	RedisPrefix  string        `envconfig:"REDIS_PREFIX" default:"accessgate"`
	RedisTimeout time.Duration `envconfig:"REDIS_TIMEOUT" default:"5s"`
	LogVerbosity int           `envconfig:"LOG_VERBOSITY" default:"0"`
}

// LoadEnv reads EnvConfig from variables named PREFIX_OWNER, PREFIX_ADMINS and so on
func LoadEnv(prefix string) (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if e := envconfig.Process(prefix, cfg); e != nil {
		return nil, fmt.Errorf("load env config: %w", e)
	}
	return cfg, nil
}

// NewFromEnv creates a gate configured by environment variables.
// Roles, profiles and credits are kept in redis if REDIS_ADDR is set, and in memory otherwise.
// opts are applied after the ones derived from environment, WithLedger replaces the derived ledger.
func NewFromEnv(ctx context.Context, prefix string, opts ...GateOption) (*Gate, error) {
	cfg, e := LoadEnv(prefix)
	if e != nil {
		return nil, e
	}

	stdr.SetVerbosity(cfg.LogVerbosity)
	l := stdr.New(log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile))

	derived := []GateOption{WithLogger(l)}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, cfg.RedisTimeout)
		defer cancel()
		if e := client.Ping(pingCtx).Err(); e != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, e)
		}
		go func() {
			<-ctx.Done()
			_ = client.Close()
		}()

		derived = append(derived,
			WithRolePersister(redispersist.NewRolePersister(client,
				redispersist.WithPrefix(cfg.RedisPrefix),
				redispersist.WithTimeout(cfg.RedisTimeout),
				redispersist.WithLogger(l.WithName("persist")),
			)),
			WithProfilePersister(redispersist.NewProfilePersister(client,
				redispersist.WithPrefix(cfg.RedisPrefix),
				redispersist.WithTimeout(cfg.RedisTimeout),
				redispersist.WithLogger(l.WithName("persist")),
			)),
			WithLedger(redisledger.New(client,
				redisledger.WithPrefix(cfg.RedisPrefix),
				redisledger.WithLogger(l.WithName("ledger")),
			)),
		)
	} else {
		derived = append(derived, WithLedger(memory.New(l.WithName("ledger"))))
	}

	g, e := New(ctx, types.Identity(cfg.Owner), append(derived, opts...)...)
	if e != nil {
		return nil, e
	}

	if len(cfg.Admins) > 0 {
		admins := make([]types.Identity, 0, len(cfg.Admins))
		for _, a := range cfg.Admins {
			admins = append(admins, types.Identity(a))
		}
		if e := g.authz.AddAdmins(g.Owner(), admins...); e != nil {
			return nil, fmt.Errorf("seed admins: %w", e)
		}
	}

	return g, nil
}
