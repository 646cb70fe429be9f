package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const connectTimeout = 10 * time.Second

// NewDatabasePool opens the pool described by database_url and db_pool, then pings it
func NewDatabasePool(ctx context.Context, config *Config) (*pgxpool.Pool, error) {
	poolConfig, err := config.pgxPoolConfig()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func (c *Config) pgxPoolConfig() (*pgxpool.Config, error) {
	dbConfig, err := c.ParseDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig, err := pgxpool.ParseConfig(dbConfig.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	limits := c.DBPool
	if dbConfig.MaxConns > 0 {
		limits.MaxConns = dbConfig.MaxConns
	}
	if limits.MaxConns > 0 && limits.MinConns > limits.MaxConns {
		limits.MinConns = limits.MaxConns
	}
	// zero keeps the pgx default
	if limits.MaxConns > 0 {
		poolConfig.MaxConns = limits.MaxConns
	}
	if limits.MinConns > 0 {
		poolConfig.MinConns = limits.MinConns
	}
	if limits.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = limits.MaxConnLifetime
	}
	if limits.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = limits.MaxConnIdleTime
	}
	return poolConfig, nil
}
