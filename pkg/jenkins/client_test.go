package jenkins

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL,
		WithCredentials("admin", "token"),
		WithRetry(1, time.Millisecond),
	)
	if err != nil {
		t.Fatalf("unexpected client error: %v", err)
	}
	return client, server
}

func TestClient_CreateJobWhenMissing(t *testing.T) {
	var createBody string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/crumbIssuer/api/json":
			json.NewEncoder(w).Encode(map[string]string{
				"crumb":             "abc123",
				"crumbRequestField": "Jenkins-Crumb",
			})
		case r.URL.Path == "/job/noble_stable_krita/config.xml" && r.Method == http.MethodGet:
			http.NotFound(w, r)
		case r.URL.Path == "/createItem" && r.Method == http.MethodPost:
			if r.URL.Query().Get("name") != "noble_stable_krita" {
				t.Errorf("unexpected job name %q", r.URL.Query().Get("name"))
			}
			if r.Header.Get("Jenkins-Crumb") != "abc123" {
				t.Errorf("expected crumb header, got %q", r.Header.Get("Jenkins-Crumb"))
			}
			data, _ := io.ReadAll(r.Body)
			createBody = string(data)
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
			http.Error(w, "unexpected", http.StatusInternalServerError)
		}
	}))

	if err := client.CreateOrUpdateJob(context.Background(), "noble_stable_krita", "<project/>"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if createBody != "<project/>" {
		t.Fatalf("unexpected config body %q", createBody)
	}
}

func TestClient_UpdateJobWhenPresent(t *testing.T) {
	var updated bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/crumbIssuer/api/json":
			// No CSRF protection configured on this controller.
			http.NotFound(w, r)
		case r.URL.Path == "/job/existing/config.xml" && r.Method == http.MethodGet:
			w.Write([]byte("<project/>"))
		case r.URL.Path == "/job/existing/config.xml" && r.Method == http.MethodPost:
			updated = true
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
			http.Error(w, "unexpected", http.StatusInternalServerError)
		}
	}))

	if err := client.CreateOrUpdateJob(context.Background(), "existing", "<project/>"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated {
		t.Fatalf("expected config.xml POST for existing job")
	}
}

func TestClient_JobExistsSurfacesServerErrors(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	if _, err := client.JobExists(context.Background(), "anything"); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func TestClient_SendsBasicAuth(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, token, ok := r.BasicAuth()
		if !ok || user != "admin" || token != "token" {
			t.Errorf("expected basic auth credentials, got %q/%q", user, token)
		}
		http.NotFound(w, r)
	}))

	if _, err := client.JobExists(context.Background(), "probe"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewClient_RejectsBadURLs(t *testing.T) {
	for _, raw := range []string{"", "   ", "://bad"} {
		if _, err := NewClient(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
