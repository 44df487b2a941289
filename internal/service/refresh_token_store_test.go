package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryRefreshTokenStore_Lifecycle(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("jti-1", "u-1", time.Hour); err != nil {
		t.Fatalf("store: %v", err)
	}
	if ok, _ := store.Exists("jti-1"); !ok {
		t.Fatalf("expected jti present")
	}
	if err := store.Revoke("jti-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := store.Exists("jti-1"); ok {
		t.Fatalf("expected jti revoked")
	}
}

func TestMemoryRefreshTokenStore_Expiry(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("jti-1", "u-1", -time.Second); err != nil {
		t.Fatalf("store: %v", err)
	}
	if ok, _ := store.Exists("jti-1"); ok {
		t.Fatalf("expected expired jti absent")
	}
}

type mockRedisKV struct {
	setKey    string
	setValue  interface{}
	setTTL    time.Duration
	existsKey string
	existsN   int64
	delKey    string
	err       error
}

func (m *mockRedisKV) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	m.setKey, m.setValue, m.setTTL = key, value, ttl
	return redis.NewStatusResult("OK", m.err)
}

func (m *mockRedisKV) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	m.existsKey = keys[0]
	return redis.NewIntResult(m.existsN, m.err)
}

func (m *mockRedisKV) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.delKey = keys[0]
	return redis.NewIntResult(1, m.err)
}

func TestRedisRefreshTokenStore_PrefixesKeys(t *testing.T) {
	mock := &mockRedisKV{existsN: 1}
	store := &redisRefreshTokenStore{client: mock, prefix: "auth:refresh:"}

	if err := store.Store("jti-1", "u-1", time.Hour); err != nil {
		t.Fatalf("store: %v", err)
	}
	if mock.setKey != "auth:refresh:jti-1" || mock.setValue != "u-1" || mock.setTTL != time.Hour {
		t.Fatalf("unexpected set: key=%q value=%v ttl=%v", mock.setKey, mock.setValue, mock.setTTL)
	}

	ok, err := store.Exists("jti-1")
	if err != nil || !ok {
		t.Fatalf("exists: ok=%v err=%v", ok, err)
	}
	if mock.existsKey != "auth:refresh:jti-1" {
		t.Fatalf("unexpected exists key %q", mock.existsKey)
	}

	if err := store.Revoke("jti-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if mock.delKey != "auth:refresh:jti-1" {
		t.Fatalf("unexpected del key %q", mock.delKey)
	}
}

func TestRedisRefreshTokenStore_PropagatesErrors(t *testing.T) {
	mock := &mockRedisKV{err: errors.New("redis down")}
	store := &redisRefreshTokenStore{client: mock, prefix: "auth:refresh:"}

	if _, err := store.Exists("jti-1"); err == nil {
		t.Fatalf("expected error surfaced")
	}
}

func TestRedisRefreshTokenStore_BlankJTIIsNoop(t *testing.T) {
	mock := &mockRedisKV{}
	store := &redisRefreshTokenStore{client: mock, prefix: "auth:refresh:"}

	if err := store.Store("  ", "u-1", time.Hour); err != nil {
		t.Fatalf("store: %v", err)
	}
	if ok, err := store.Exists(""); ok || err != nil {
		t.Fatalf("expected blank jti absent without redis call")
	}
	if mock.setKey != "" || mock.existsKey != "" {
		t.Fatalf("expected no redis calls for blank jti")
	}
}
