// Package cache holds the optional Redis connection used for the JWT
// revocation list. Everything degrades to a no-op when REDIS_ADDR is unset,
// so a plain single-process deployment needs no Redis at all.
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

// Connect dials Redis if addr is non-empty. A failed ping is logged and the
// client discarded rather than fatal: the revocation list is best-effort.
func Connect(addr string) {
	if addr == "" {
		return
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis unavailable, token revocation disabled: %v", err)
		return
	}

	RDB = client
	fmt.Println("✅ Connected to Redis")
}

func revokedKey(token string) string {
	return "revoked:" + token
}

// RevokeToken records a session token as revoked until its natural expiry.
func RevokeToken(ctx context.Context, token string, ttl time.Duration) error {
	if RDB == nil || ttl <= 0 {
		return nil
	}
	return RDB.Set(ctx, revokedKey(token), "1", ttl).Err()
}

// IsTokenRevoked reports whether a token has been revoked via logout.
// Unreachable Redis counts as not revoked.
func IsTokenRevoked(ctx context.Context, token string) bool {
	if RDB == nil {
		return false
	}
	n, err := RDB.Exists(ctx, revokedKey(token)).Result()
	return err == nil && n > 0
}
