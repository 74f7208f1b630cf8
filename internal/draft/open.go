package draft

import (
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"secureview/internal/config"
)

// Open builds the Store selected by cfg.DraftBackend. The returned closer releases
// resources owned by the store (never the shared Redis client).
func Open(cfg *config.Config, rdb *redis.Client) (Store, io.Closer, error) {
	switch cfg.DraftBackend {
	case config.DraftBackendRedis, "":
		if rdb == nil {
			return nil, nil, fmt.Errorf("redis draft backend requires a redis client")
		}
		return NewRedisStore(rdb, cfg.DraftTTL), nopCloser{}, nil
	case config.DraftBackendSQLite:
		s, err := NewSQLiteStore(cfg.DraftSQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.DraftBackendMemory:
		return NewMemoryStore(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown draft backend %q", cfg.DraftBackend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
