package query

import "testing"

func TestMemoryCacheSetGet(t *testing.T) {
	cache := NewMemoryCache()

	if _, ok := cache.Get(DevicesKey()); ok {
		t.Fatal("expected miss on empty cache")
	}

	cache.Set(DevicesKey(), "value")
	got, ok := cache.Get(DevicesKey())
	if !ok || got != "value" {
		t.Fatalf("expected hit, got %v %v", got, ok)
	}

	// device keys with different ids are distinct entries
	cache.Set(DeviceKey(1), "one")
	cache.Set(DeviceKey(2), "two")
	if got, _ := cache.Get(DeviceKey(1)); got != "one" {
		t.Fatalf("unexpected value for device:1: %v", got)
	}
	if got, _ := cache.Get(DeviceKey(2)); got != "two" {
		t.Fatalf("unexpected value for device:2: %v", got)
	}
}

func TestMemoryCacheInvalidateBumpsGeneration(t *testing.T) {
	cache := NewMemoryCache()
	key := DevicesKey()

	cache.Set(key, "fresh")
	gen := cache.Generation(key)

	cache.Invalidate(key)
	if _, ok := cache.Get(key); ok {
		t.Fatal("expected miss after invalidation")
	}
	if cache.Generation(key) == gen {
		t.Fatal("expected generation bump after invalidation")
	}
}

func TestMemoryCacheStaleCompletionDiscarded(t *testing.T) {
	cache := NewMemoryCache()
	key := DevicesKey()

	// A fetch captures the generation, then an invalidation races it.
	gen := cache.Generation(key)
	cache.Invalidate(key)

	if cache.SetIfCurrent(key, "stale", gen) {
		t.Fatal("stale completion must not be stored")
	}
	if _, ok := cache.Get(key); ok {
		t.Fatal("expected cache to stay empty")
	}

	// A fetch started after the invalidation lands normally.
	gen = cache.Generation(key)
	if !cache.SetIfCurrent(key, "fresh", gen) {
		t.Fatal("current completion must be stored")
	}
	if got, _ := cache.Get(key); got != "fresh" {
		t.Fatalf("unexpected value: %v", got)
	}
}

func TestMemoryCacheInvalidateAll(t *testing.T) {
	cache := NewMemoryCache()
	cache.Set(UserKey(), "user")
	cache.Set(DevicesKey(), "devices")
	gen := cache.Generation(UserKey())

	cache.InvalidateAll()

	if _, ok := cache.Get(UserKey()); ok {
		t.Fatal("expected user entry cleared")
	}
	if _, ok := cache.Get(DevicesKey()); ok {
		t.Fatal("expected devices entry cleared")
	}
	if cache.Generation(UserKey()) == gen {
		t.Fatal("expected generation bump for cleared entries")
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{UserKey(), "user"},
		{DevicesKey(), "devices"},
		{DeviceKey(42), "device:42"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("Key.String() = %q, want %q", got, tt.want)
		}
	}
}
