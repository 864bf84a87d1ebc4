package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
		failed []string
	}{
		{name: "no checks", want: StatusReady},
		{
			name: "all pass",
			checks: map[string]CheckFunc{
				"store":   func(context.Context) error { return nil },
				"watcher": func(context.Context) error { return nil },
			},
			want: StatusReady,
		},
		{
			name: "one fails",
			checks: map[string]CheckFunc{
				"store":   func(context.Context) error { return errors.New("database is locked") },
				"watcher": func(context.Context) error { return nil },
			},
			want:   StatusDegraded,
			failed: []string{"store"},
		},
		{
			name: "timeout",
			checks: map[string]CheckFunc{
				"slow": func(ctx context.Context) error {
					<-ctx.Done()
					time.Sleep(time.Millisecond)
					return nil
				},
			},
			want:   StatusDegraded,
			failed: []string{"slow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(20 * time.Millisecond)
			for name, check := range tt.checks {
				c.Register(name, check)
			}

			report := c.Readiness(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %q, want %q", report.Status, tt.want)
			}
			var failed []string
			for _, name := range c.Names() {
				if report.Checks[name].Status != StatusOK {
					failed = append(failed, name)
				}
			}
			if diff := cmp.Diff(tt.failed, failed); diff != "" {
				t.Errorf("failed checks mismatch (-want +got):\n%s", diff)
			}
		})
	}
	// Let timed-out check goroutines finish before the leak check.
	time.Sleep(10 * time.Millisecond)
}

func TestHandlers(t *testing.T) {
	c := New(time.Second)
	c.Register("store", func(context.Context) error { return errors.New("closed") })
	mux := http.NewServeMux()
	c.Mount(mux)

	tests := []struct {
		method string
		path   string
		code   int
		status string
	}{
		{http.MethodGet, "/healthz", http.StatusOK, StatusOK},
		{http.MethodGet, "/readyz", http.StatusServiceUnavailable, StatusDegraded},
		{http.MethodPost, "/healthz", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.code {
				t.Fatalf("code = %d, want %d", rec.Code, tt.code)
			}
			if tt.status == "" {
				return
			}
			var report Report
			if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if report.Status != tt.status {
				t.Errorf("status = %q, want %q", report.Status, tt.status)
			}
		})
	}
}
