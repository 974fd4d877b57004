package storage

import (
	"context"
	"testing"
	"time"
)

func TestRedisLocker_MutualExclusion(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	locker := NewRedisLocker(client)
	key := "mall:stock:lock:test:1"
	client.Del(ctx, key)
	defer client.Del(ctx, key)

	token, ok, err := locker.TryAcquire(ctx, key, time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire failed: ok=%v err=%v", ok, err)
	}

	if _, ok, _ := locker.TryAcquire(ctx, key, time.Minute); ok {
		t.Fatal("second acquire should fail while held")
	}

	if err := locker.Release(ctx, key, token); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, ok, _ := locker.TryAcquire(ctx, key, time.Minute); !ok {
		t.Error("acquire should succeed after release")
	}
}

func TestRedisLocker_ReleaseRequiresMatchingToken(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	locker := NewRedisLocker(client)
	key := "mall:stock:lock:test:2"
	client.Del(ctx, key)
	defer client.Del(ctx, key)

	token, _, _ := locker.TryAcquire(ctx, key, time.Minute)

	if err := locker.Release(ctx, key, "foreign-token"); err != nil {
		t.Fatalf("foreign release must be a silent no-op, got: %v", err)
	}
	if _, ok, _ := locker.TryAcquire(ctx, key, time.Minute); ok {
		t.Fatal("lock deleted by a non-owner")
	}

	if err := locker.Release(ctx, key, token); err != nil {
		t.Fatalf("owner release: %v", err)
	}
}

func TestRedisLocker_ExpiredLockCanBeTaken(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	locker := NewRedisLocker(client)
	key := "mall:stock:lock:test:3"
	client.Del(ctx, key)
	defer client.Del(ctx, key)

	if _, ok, _ := locker.TryAcquire(ctx, key, 50*time.Millisecond); !ok {
		t.Fatal("initial acquire failed")
	}
	time.Sleep(80 * time.Millisecond)

	if _, ok, _ := locker.TryAcquire(ctx, key, time.Minute); !ok {
		t.Error("expired lock should be acquirable")
	}
}
