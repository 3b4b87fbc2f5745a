// Package redis implements the walletsync wallet store on Redis: the
// tracked wallet set, per-wallet sync tips, the used-address set, and each
// wallet's balance-affecting transaction index.
package redis

import (
	"context"

	redis "github.com/redis/go-redis/v9"
)

type Client struct {
	conn *redis.Client
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func NewClient(ctx context.Context, addr, username, password string, db int) (*Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Client{
		conn: conn,
	}, nil
}
