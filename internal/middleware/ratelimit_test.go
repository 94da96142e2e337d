package middleware

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestNewRedisClient(t *testing.T) {
	t.Parallel()

	srv := miniredis.RunT(t)

	client, err := NewRedisClient("redis://" + srv.Addr() + "/0")
	if err != nil {
		t.Fatalf("NewRedisClient() error = %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	if _, err := NewRedisStore(client); err != nil {
		t.Errorf("NewRedisStore() error = %v", err)
	}
}

func TestNewRedisClient_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisClient("not-a-redis-url"); err == nil {
		t.Error("NewRedisClient() with bad URL error = nil")
	}

	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	if _, err := NewRedisClient("redis://" + addr + "/0"); err == nil {
		t.Error("NewRedisClient() with stopped server error = nil")
	}
}
