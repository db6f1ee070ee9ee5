package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pentopublic/pentopublic-client/config"
	"github.com/pentopublic/pentopublic-client/internal/adapters/credstore"
	redisadapter "github.com/pentopublic/pentopublic-client/internal/adapters/redis"
	"github.com/pentopublic/pentopublic-client/internal/adapters/sqlite"
	"github.com/pentopublic/pentopublic-client/internal/ports"
)

const credentialsFile = "credentials.json"

// StoreDeps groups dependencies for credential store construction.
type StoreDeps struct {
	Store  config.StoreConfig
	Redis  config.RedisConfig
	Logger *slog.Logger
}

// BuildCredentialStore opens the configured medium and wraps it in a credstore.Store.
// The returned closer releases the medium and is never nil.
func BuildCredentialStore(ctx context.Context, deps StoreDeps) (*credstore.Store, func() error, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	kv, closer, err := openMedium(ctx, deps, logger)
	if err != nil {
		return nil, nil, err
	}

	store := credstore.New(credstore.Options{
		KV:            kv,
		Logger:        logger,
		RejectExpired: deps.Store.RejectExpiredTokens,
	})
	logger.DebugContext(ctx, "credential store ready", "driver", string(deps.Store.Driver))
	return store, closer, nil
}

//nolint:ireturn // the medium is selected at runtime.
func openMedium(ctx context.Context, deps StoreDeps, logger *slog.Logger) (ports.KeyValueStore, func() error, error) {
	noop := func() error { return nil }

	switch deps.Store.Driver {
	case config.StoreDriverMemory:
		return credstore.NewMemoryKV(), noop, nil

	case config.StoreDriverSQLite:
		kv, err := sqlite.Open(ctx, deps.Store.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite credential store: %w", err)
		}
		return kv, kv.Close, nil

	case config.StoreDriverRedis:
		client, err := ConnectRedis(ctx, deps.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		kv := redisadapter.NewKV(client, redisadapter.KVOptions{
			Prefix: deps.Store.RedisPrefix,
			TTL:    deps.Store.RedisTTL,
		})
		return kv, client.Close, nil

	case config.StoreDriverFile, "":
		path, err := credentialsPath(deps.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return credstore.NewFileKV(path), noop, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", deps.Store.Driver)
	}
}

func credentialsPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "pentopublic", credentialsFile), nil
}
