package query

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vibibay-client-go/internal/domain/api"
	"vibibay-client-go/internal/domain/eventbus"
	"vibibay-client-go/internal/domain/session/model"
	"vibibay-client-go/internal/domain/session/store"
	"vibibay-client-go/internal/platform/logging"
)

type testBackend struct {
	mux   *http.ServeMux
	calls map[string]*atomic.Int64
	mu    sync.Mutex
}

func newTestBackend() *testBackend {
	return &testBackend{
		mux:   http.NewServeMux(),
		calls: make(map[string]*atomic.Int64),
	}
}

func (b *testBackend) counter(name string) *atomic.Int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.calls[name]
	if !ok {
		c = &atomic.Int64{}
		b.calls[name] = c
	}
	return c
}

func (b *testBackend) handle(pattern, name string, handler http.HandlerFunc) {
	counter := b.counter(name)
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		counter.Add(1)
		handler(w, r)
	})
}

func (b *testBackend) count(name string) int64 {
	return b.counter(name).Load()
}

func newTestService(t *testing.T, backend *testBackend, opts Options) (*Service, store.Store, *eventbus.Bus) {
	t.Helper()
	server := httptest.NewServer(backend.mux)
	t.Cleanup(server.Close)

	sessions := store.NewMemory(store.Config{})
	t.Cleanup(func() {
		_ = sessions.Close(context.Background())
	})

	client, err := api.NewClient(api.Config{
		BaseURL: server.URL,
		Profile: "test",
	}, sessions, logging.Discard())
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	bus := eventbus.New(1)
	t.Cleanup(bus.Shutdown)

	return NewService(client, bus, logging.Discard(), opts), sessions, bus
}

func seedSession(t *testing.T, sessions store.Store) {
	t.Helper()
	err := sessions.Save(context.Background(), model.Session{
		Profile: "test",
		Token:   "tok-test",
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func writeDevices(w http.ResponseWriter, devices ...api.Device) {
	json.NewEncoder(w).Encode(api.DevicesResponse{Devices: devices})
}

func TestReadsSkippedWithoutSession(t *testing.T) {
	backend := newTestBackend()
	backend.handle("GET /devices", "list", func(w http.ResponseWriter, r *http.Request) {
		writeDevices(w)
	})
	backend.handle("GET /user/profile", "profile", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.User{})
	})

	service, _, _ := newTestService(t, backend, Options{})

	if _, err := service.Devices(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := service.User(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if backend.count("list") != 0 || backend.count("profile") != 0 {
		t.Fatal("token-gated reads must not issue network calls without a session")
	}
}

func TestReadCachedAfterFirstFetch(t *testing.T) {
	backend := newTestBackend()
	backend.handle("GET /devices", "list", func(w http.ResponseWriter, r *http.Request) {
		writeDevices(w, api.Device{ID: 1, Name: "vpn-1"})
	})

	service, sessions, _ := newTestService(t, backend, Options{})
	seedSession(t, sessions)

	first, err := service.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices error: %v", err)
	}
	second, err := service.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices error: %v", err)
	}
	if backend.count("list") != 1 {
		t.Fatalf("expected one network call, got %d", backend.count("list"))
	}
	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Fatalf("expected identical cached results: %+v vs %+v", first, second)
	}
}

func TestConcurrentReadsDeduplicated(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 2)

	backend := newTestBackend()
	backend.handle("GET /devices", "list", func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-release
		writeDevices(w, api.Device{ID: 1, Name: "vpn-1"})
	})

	service, sessions, _ := newTestService(t, backend, Options{})
	seedSession(t, sessions)

	var wg sync.WaitGroup
	results := make([][]api.Device, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = service.Devices(context.Background())
		}(i)
	}

	// Wait for the single in-flight request, give the second caller time to
	// join it, then let the handler respond.
	<-entered
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d error: %v", i, errs[i])
		}
		if len(results[i]) != 1 || results[i][0].ID != 1 {
			t.Fatalf("caller %d unexpected result: %+v", i, results[i])
		}
	}
	if backend.count("list") != 1 {
		t.Fatalf("expected exactly one network call, got %d", backend.count("list"))
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	var serial atomic.Int64
	backend := newTestBackend()
	backend.handle("GET /devices", "list", func(w http.ResponseWriter, r *http.Request) {
		writeDevices(w, api.Device{ID: serial.Add(1), Name: "vpn"})
	})

	service, sessions, _ := newTestService(t, backend, Options{})
	seedSession(t, sessions)

	first, err := service.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices error: %v", err)
	}

	service.Invalidate(DevicesKey())

	second, err := service.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices error: %v", err)
	}
	if backend.count("list") != 2 {
		t.Fatalf("expected refetch after invalidation, got %d calls", backend.count("list"))
	}
	if first[0].ID == second[0].ID {
		t.Fatal("expected fresh data after invalidation")
	}
}

func TestReadErrorNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	backend := newTestBackend()
	backend.handle("GET /devices", "list", func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeDevices(w, api.Device{ID: 1, Name: "vpn-1"})
	})

	service, sessions, _ := newTestService(t, backend, Options{})
	seedSession(t, sessions)

	if _, err := service.Devices(context.Background()); err == nil {
		t.Fatal("expected error from failing backend")
	}

	fail.Store(false)
	devices, err := service.Devices(context.Background())
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("unexpected devices: %+v", devices)
	}
	if backend.count("list") != 2 {
		t.Fatalf("expected two calls (failure not cached), got %d", backend.count("list"))
	}
}
