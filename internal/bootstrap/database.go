package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/redis/go-redis/v9"

	"github.com/target/interview-ui/config"
	"github.com/target/interview-ui/internal/migrate"
)

const connectTimeout = 5 * time.Second

// DatabaseConfig carries connection settings for the server-side token stores.
type DatabaseConfig struct {
	DBConfig    config.DBConfig
	RedisConfig config.RedisConfig
	Logger      *slog.Logger
}

// ConnectDB opens the postgres token store database and verifies it answers.
func ConnectDB(ctx context.Context, cfg DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DBConfig.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One short query per request at most; a small pool is plenty.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := pingOrClose(ctx, "database", db, db.PingContext); err != nil {
		return nil, err
	}
	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "token database connected",
			"host", cfg.DBConfig.Host,
			"database", cfg.DBConfig.Name,
			"schema", cfg.DBConfig.Schema,
		)
	}
	return db, nil
}

// ConnectRedis opens the redis token store connection for the configured topology.
//
//nolint:ireturn // sentinel and cluster clients share redis.UniversalClient.
func ConnectRedis(ctx context.Context, cfg DatabaseConfig) (redis.UniversalClient, error) {
	client, err := newRedisClient(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}
	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if err := pingOrClose(ctx, "redis", client, ping); err != nil {
		return nil, err
	}
	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "token redis connected",
			"topology", cfg.RedisConfig.Topology(),
			"addrs", redisAddrDescription(cfg.RedisConfig),
		)
	}
	return client, nil
}

func pingOrClose(ctx context.Context, what string, c io.Closer, ping func(context.Context) error) error {
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	err := ping(pingCtx)
	if err == nil {
		return nil
	}
	if closeErr := c.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close %s: %w", what, closeErr))
	}
	return fmt.Errorf("ping %s: %w", what, err)
}

//nolint:ireturn // see ConnectRedis.
func newRedisClient(cfg config.RedisConfig) (redis.UniversalClient, error) {
	addrs := cfg.Addrs()
	topology := cfg.Topology()
	if len(addrs) == 0 {
		return nil, fmt.Errorf("redis %s configuration requires at least one address", topology)
	}

	switch topology {
	case config.RedisCluster:
		return redis.NewClusterClient(&redis.ClusterOptions{Addrs: addrs, Password: cfg.Password}), nil
	case config.RedisSentinel:
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.SentinelMasterName,
			SentinelAddrs:    addrs,
			Password:         cfg.Password,
			SentinelPassword: cfg.SentinelPassword,
			DB:               cfg.DB,
		}), nil
	}

	uri := addrs[0]
	if isRedisURL(uri) {
		opt, err := redis.ParseURL(uri)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: uri, Password: cfg.Password, DB: cfg.DB}), nil
}

// redisAddrDescription is safe to log: URLs are reduced to their host.
func redisAddrDescription(cfg config.RedisConfig) string {
	addrs := cfg.Addrs()
	for i, a := range addrs {
		if isRedisURL(a) {
			if opt, err := redis.ParseURL(a); err == nil {
				addrs[i] = opt.Addr
			} else {
				addrs[i] = "invalid-url"
			}
		}
	}
	return strings.Join(addrs, ",")
}

func isRedisURL(value string) bool {
	return strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://")
}

// RunMigrations creates ui_tokens and applies later schema changes.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	applied, err := migrate.Run(ctx, db, logger)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "token store schema up to date", "applied", len(applied))
	}
	return nil
}
