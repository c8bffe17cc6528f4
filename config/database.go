package config

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// DBConfig points the postgres token store at its database.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"interview"`
	Password string `env:"PASSWORD" envDefault:"interview"`
	Name     string `env:"NAME"     envDefault:"interview_ui"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`
	// Schema, when set, is prepended to search_path so ui_tokens can live outside public.
	Schema string `env:"SCHEMA" envDefault:""`
	// RunMigrationsOnStart creates ui_tokens during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// DSN renders a pgx connection URL. Credentials are escaped by url.URL.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	if s := strings.TrimSpace(c.Schema); s != "" {
		q.Set("search_path", s+",public")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// RedisTopology is how the redis token store reaches its server.
type RedisTopology string

const (
	RedisDirect   RedisTopology = "direct"
	RedisSentinel RedisTopology = "sentinel"
	RedisCluster  RedisTopology = "cluster"
)

// RedisConfig holds connection settings for the redis token store.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// Topology picks cluster over sentinel over a direct connection.
func (c RedisConfig) Topology() RedisTopology {
	switch {
	case c.UseCluster:
		return RedisCluster
	case c.UseSentinel:
		return RedisSentinel
	default:
		return RedisDirect
	}
}

// Addrs returns the trimmed, non-empty node list for the selected topology.
func (c RedisConfig) Addrs() []string {
	var raw []string
	switch c.Topology() {
	case RedisCluster:
		raw = c.ClusterNodes
	case RedisSentinel:
		raw = c.SentinelNodes
	default:
		raw = []string{c.URI}
	}
	out := make([]string, 0, len(raw))
	for _, a := range raw {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
