package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vibibay-client-go/internal/domain/api"
	"vibibay-client-go/internal/domain/eventbus"
	"vibibay-client-go/internal/domain/query"
	"vibibay-client-go/internal/domain/session/model"
	"vibibay-client-go/internal/domain/session/store"
	"vibibay-client-go/internal/platform/logging"
)

func newTestApp(t *testing.T, backend http.Handler, stdin string) (*App, *bytes.Buffer, store.Store) {
	t.Helper()
	remote := httptest.NewServer(backend)
	t.Cleanup(remote.Close)

	sessions := store.NewMemory(store.Config{})
	t.Cleanup(func() {
		_ = sessions.Close(context.Background())
	})

	client, err := api.NewClient(api.Config{
		BaseURL: remote.URL,
		Profile: "test",
	}, sessions, logging.Discard())
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	bus := eventbus.New(1)
	t.Cleanup(bus.Shutdown)
	queries := query.NewService(client, bus, logging.Discard(), query.Options{})

	out := &bytes.Buffer{}
	app, err := New(queries, nil, bus, logging.Discard(), out, strings.NewReader(stdin))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return app, out, sessions
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	app, out, _ := newTestApp(t, http.NewServeMux(), "")

	if err := app.Run(context.Background(), []string{"teleport"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Fatalf("expected usage output, got %q", out.String())
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	app, _, _ := newTestApp(t, http.NewServeMux(), "")

	if err := app.Run(context.Background(), []string{"login"}); err == nil {
		t.Fatal("expected error for missing flags")
	}
}

func TestDevicesRendersTable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /devices", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.DevicesResponse{
			Devices: []api.Device{
				{ID: 1, Name: "vpn-home", Status: api.DeviceStatusActive,
					Subscription: api.Subscription{Status: api.SubscriptionStatusActive}},
				{ID: 2, Name: "vpn-travel", Status: api.DeviceStatusPendingDelete,
					Subscription: api.Subscription{Status: api.SubscriptionStatusExpired}},
			},
		})
	})

	app, out, sessions := newTestApp(t, mux, "")
	err := sessions.Save(context.Background(), model.Session{Profile: "test", Token: "tok"})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}

	if err := app.Run(context.Background(), []string{"devices"}); err != nil {
		t.Fatalf("devices error: %v", err)
	}

	output := out.String()
	for _, want := range []string{"vpn-home", "vpn-travel", "pending_delete", "STATUS"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestLoginStepUpPromptsForCode(t *testing.T) {
	var otpSeen string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.OTP == "" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(api.ErrorResponse{Error: "OTP required", Code: "OTP_REQUIRED"})
			return
		}
		otpSeen = req.OTP
		json.NewEncoder(w).Encode(api.LoginResponse{
			Token: "tok-otp",
			User:  api.User{ID: 7, Email: "a@b.com"},
		})
	})

	app, out, sessions := newTestApp(t, mux, "123456\n")

	err := app.Run(context.Background(), []string{"login", "-email", "a@b.com", "-pass", "x"})
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if otpSeen != "123456" {
		t.Fatalf("expected resubmission with prompted code, got %q", otpSeen)
	}
	if !strings.Contains(out.String(), "One-time code:") {
		t.Fatalf("expected prompt in output, got %q", out.String())
	}
	if _, err := sessions.Get(context.Background(), "test"); err != nil {
		t.Fatalf("expected stored session after step-up login: %v", err)
	}
}

func TestPayPrintsPaymentLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /devices/42/pay", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.PaymentResponse{PaymentURL: "https://pay/xyz"})
	})

	app, out, sessions := newTestApp(t, mux, "")
	err := sessions.Save(context.Background(), model.Session{Profile: "test", Token: "tok"})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}

	err = app.Run(context.Background(), []string{"pay", "-id", "42", "-months", "3"})
	if err != nil {
		t.Fatalf("pay error: %v", err)
	}
	if !strings.Contains(out.String(), "https://pay/xyz") {
		t.Fatalf("expected payment link in output, got %q", out.String())
	}
}

func TestNotificationsEchoedToOutput(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /devices", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.AddDeviceResponse{
			Device: api.Device{ID: 3, Name: "vpn-3"},
		})
	})

	app, out, sessions := newTestApp(t, mux, "")
	err := sessions.Save(context.Background(), model.Session{Profile: "test", Token: "tok"})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}

	if err := app.Run(context.Background(), []string{"add"}); err != nil {
		t.Fatalf("add error: %v", err)
	}
	if !strings.Contains(out.String(), "ok: device vpn-3 created") {
		t.Fatalf("expected success notification echo, got %q", out.String())
	}
}
