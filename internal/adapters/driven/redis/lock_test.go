package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func setupLock(t *testing.T) (*Lock, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewLock(client), mr
}

func TestLock_Acquire(t *testing.T) {
	lock, _ := setupLock(t)
	ctx := context.Background()

	acquired, err := lock.Acquire(ctx, "index-rebuild", time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !acquired {
		t.Fatal("expected to acquire lock")
	}

	// Second acquire of a held lock fails
	acquired, err = lock.Acquire(ctx, "index-rebuild", time.Minute)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if acquired {
		t.Error("expected second acquire to fail while lock held")
	}
}

func TestLock_AcquireAfterExpiry(t *testing.T) {
	lock, mr := setupLock(t)
	ctx := context.Background()

	if acquired, _ := lock.Acquire(ctx, "index-rebuild", time.Minute); !acquired {
		t.Fatal("expected to acquire lock")
	}

	mr.FastForward(2 * time.Minute)

	acquired, err := lock.Acquire(ctx, "index-rebuild", time.Minute)
	if err != nil {
		t.Fatalf("acquire after expiry: %v", err)
	}
	if !acquired {
		t.Error("expected to acquire lock after TTL expiry")
	}
}

func TestLock_Release(t *testing.T) {
	lock, _ := setupLock(t)
	ctx := context.Background()

	if acquired, _ := lock.Acquire(ctx, "index-rebuild", time.Minute); !acquired {
		t.Fatal("expected to acquire lock")
	}
	if err := lock.Release(ctx, "index-rebuild"); err != nil {
		t.Fatalf("release: %v", err)
	}

	acquired, err := lock.Acquire(ctx, "index-rebuild", time.Minute)
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	if !acquired {
		t.Error("expected to reacquire after release")
	}
}

func TestLock_Release_NotOwner(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	first := NewLock(client)
	second := NewLock(client)
	ctx := context.Background()

	if acquired, _ := first.Acquire(ctx, "index-rebuild", time.Minute); !acquired {
		t.Fatal("expected to acquire lock")
	}

	// Release by a non-owner leaves the lock held
	if err := second.Release(ctx, "index-rebuild"); err != nil {
		t.Fatalf("release by non-owner: %v", err)
	}
	if acquired, _ := second.Acquire(ctx, "index-rebuild", time.Minute); acquired {
		t.Error("expected lock to remain held after non-owner release")
	}
}

func TestLock_Extend(t *testing.T) {
	lock, mr := setupLock(t)
	ctx := context.Background()

	if acquired, _ := lock.Acquire(ctx, "index-rebuild", time.Minute); !acquired {
		t.Fatal("expected to acquire lock")
	}
	if err := lock.Extend(ctx, "index-rebuild", 5*time.Minute); err != nil {
		t.Fatalf("extend: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	// Still held after the original TTL thanks to the extension
	if acquired, _ := lock.Acquire(ctx, "index-rebuild", time.Minute); acquired {
		t.Error("expected lock to still be held after extend")
	}
}

func TestLock_Extend_NotHeld(t *testing.T) {
	lock, _ := setupLock(t)

	err := lock.Extend(context.Background(), "index-rebuild", time.Minute)
	if !errors.Is(err, ErrNotHolder) {
		t.Errorf("expected ErrNotHolder, got %v", err)
	}
}

func TestLock_Extend_ForeignLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	first := NewLock(client)
	second := NewLock(client)
	ctx := context.Background()

	if acquired, _ := first.Acquire(ctx, "index-rebuild", time.Minute); !acquired {
		t.Fatal("expected to acquire lock")
	}

	if err := second.Extend(ctx, "index-rebuild", time.Minute); !errors.Is(err, ErrNotHolder) {
		t.Errorf("expected ErrNotHolder extending a foreign lock, got %v", err)
	}
}

func TestLock_Ping(t *testing.T) {
	lock, _ := setupLock(t)

	if err := lock.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}
