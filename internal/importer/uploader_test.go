package importer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shaiso/wfimport/internal/domain"
	"github.com/shaiso/wfimport/internal/telemetry"
	"github.com/shaiso/wfimport/internal/workflow"
)

func testPayload(t *testing.T, doc string) workflow.Payload {
	t.Helper()
	d, err := workflow.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return d.Payload()
}

func TestUploader_SuccessOnFirstEndpoint(t *testing.T) {
	var requests atomic.Int32
	var receivedBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/workflows" {
			t.Errorf("expected /api/v1/workflows, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		json.NewDecoder(r.Body).Decode(&receivedBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "abc123", "name": "X"}`))
	}))
	defer server.Close()

	up := NewUploader(Config{BaseURL: server.URL})
	payload := testPayload(t, `{"name": "X", "active": true, "nodes": [{"id": "1"}]}`)

	result := up.Upload(context.Background(), payload, domain.Credentials("", "", ""))

	if !result.Succeeded {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.WorkflowID != "abc123" {
		t.Errorf("expected id abc123, got %q", result.WorkflowID)
	}
	if result.WorkflowName != "X" {
		t.Errorf("expected name X, got %q", result.WorkflowName)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("expected exactly 1 request, got %d", got)
	}
	if len(result.Attempts) != 1 {
		t.Errorf("expected 1 attempt, got %d", len(result.Attempts))
	}
	if result.Scheme != domain.SchemeNone || result.Endpoint != "/api/v1/workflows" {
		t.Errorf("unexpected winner: %s %s", result.Scheme, result.Endpoint)
	}
	if receivedBody["active"] != false {
		t.Errorf("expected active=false in body, got %v", receivedBody["active"])
	}
	if result.WorkflowURL() != server.URL+"/workflow/abc123" {
		t.Errorf("unexpected workflow URL: %s", result.WorkflowURL())
	}
}

func TestUploader_AllUnauthorized(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	up := NewUploader(Config{BaseURL: server.URL})
	creds := domain.Credentials("key", "user", "pass")

	result := up.Upload(context.Background(), testPayload(t, `{"name": "X"}`), creds)

	if result.Succeeded {
		t.Fatal("expected failure")
	}

	expected := len(creds) * len(UploadEndpoints)
	if got := int(requests.Load()); got != expected {
		t.Errorf("expected %d requests, got %d", expected, got)
	}
	if len(result.Attempts) != expected {
		t.Errorf("expected %d attempts, got %d", expected, len(result.Attempts))
	}
	for i, a := range result.Attempts {
		if a.Outcome != domain.OutcomeUnauthorized {
			t.Errorf("attempt %d: expected unauthorized, got %s", i, a.Outcome)
		}
		if a.StatusCode != http.StatusUnauthorized {
			t.Errorf("attempt %d: expected 401, got %d", i, a.StatusCode)
		}
	}
	if !strings.Contains(result.Error, ErrImportFailed.Error()) {
		t.Errorf("expected error to mention %q, got %q", ErrImportFailed, result.Error)
	}
}

func TestUploader_Order(t *testing.T) {
	type call struct {
		path   string
		apiKey string
		basic  bool
	}
	var calls []call

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, basic := r.BasicAuth()
		calls = append(calls, call{path: r.URL.Path, apiKey: r.Header.Get(APIKeyHeader), basic: basic})
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	up := NewUploader(Config{BaseURL: server.URL + "/"})
	up.Upload(context.Background(), testPayload(t, `{}`), domain.Credentials("secret", "user", "pass"))

	if len(calls) != 9 {
		t.Fatalf("expected 9 calls, got %d", len(calls))
	}

	for i, c := range calls {
		wantPath := UploadEndpoints[i%len(UploadEndpoints)]
		if c.path != wantPath {
			t.Errorf("call %d: expected path %s, got %s", i, wantPath, c.path)
		}

		switch i / len(UploadEndpoints) {
		case 0:
			if c.apiKey != "secret" || c.basic {
				t.Errorf("call %d: expected api key only, got %+v", i, c)
			}
		case 1:
			if c.apiKey != "" || !c.basic {
				t.Errorf("call %d: expected basic auth only, got %+v", i, c)
			}
		case 2:
			if c.apiKey != "" || c.basic {
				t.Errorf("call %d: expected no auth, got %+v", i, c)
			}
		}
	}
}

func TestUploader_ShortCircuitAfterFallback(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/api/v1/workflows":
			w.WriteHeader(http.StatusNotFound)
		case "/rest/workflows":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"data": {"id": "nested-7", "name": "From data"}}`))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	}))
	defer server.Close()

	up := NewUploader(Config{BaseURL: server.URL})
	result := up.Upload(context.Background(), testPayload(t, `{"name": "Local"}`), domain.Credentials("", "", ""))

	if !result.Succeeded {
		t.Fatalf("expected success, got %q", result.Error)
	}
	if result.WorkflowID != "nested-7" {
		t.Errorf("expected nested id, got %q", result.WorkflowID)
	}
	if result.WorkflowName != "From data" {
		t.Errorf("expected name from data, got %q", result.WorkflowName)
	}
	if requests.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", requests.Load())
	}

	first := result.Attempts[0]
	if first.Outcome != domain.OutcomeRemoteError || first.StatusCode != http.StatusNotFound {
		t.Errorf("unexpected first attempt: %+v", first)
	}
}

func TestUploader_ResponseShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantID   string
		wantName string
	}{
		{name: "top-level id", body: `{"id": "a1", "name": "Top"}`, wantID: "a1", wantName: "Top"},
		{name: "nested id", body: `{"data": {"id": "b2"}}`, wantID: "b2", wantName: "Local"},
		{name: "numeric id", body: `{"id": 42}`, wantID: "42", wantName: "Local"},
		{name: "top-level wins", body: `{"id": "top", "data": {"id": "nested"}}`, wantID: "top", wantName: "Local"},
		{name: "no id", body: `{}`, wantID: "", wantName: "Local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			up := NewUploader(Config{BaseURL: server.URL})
			result := up.Upload(context.Background(), testPayload(t, `{"name": "Local"}`), domain.Credentials("", "", ""))

			if !result.Succeeded {
				t.Fatalf("expected success, got %q", result.Error)
			}
			if result.WorkflowID != tt.wantID {
				t.Errorf("expected id %q, got %q", tt.wantID, result.WorkflowID)
			}
			if result.WorkflowName != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, result.WorkflowName)
			}
		})
	}
}

func TestUploader_InvalidSuccessBodyContinues(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.Write([]byte(`<html>login</html>`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "second"}`))
	}))
	defer server.Close()

	up := NewUploader(Config{BaseURL: server.URL})
	result := up.Upload(context.Background(), testPayload(t, `{}`), domain.Credentials("", "", ""))

	if !result.Succeeded || result.WorkflowID != "second" {
		t.Fatalf("expected success on second attempt, got %+v", result)
	}
	if result.Attempts[0].Outcome != domain.OutcomeRemoteError {
		t.Errorf("expected remote_error for HTML body, got %s", result.Attempts[0].Outcome)
	}
	if !strings.Contains(result.Attempts[0].Message, ErrInvalidResponse.Error()) {
		t.Errorf("unexpected message: %s", result.Attempts[0].Message)
	}
}

func TestUploader_RemoteErrorTruncatesBody(t *testing.T) {
	longBody := strings.Repeat("x", 500)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, longBody)
	}))
	defer server.Close()

	up := NewUploader(Config{BaseURL: server.URL})
	result := up.Upload(context.Background(), testPayload(t, `{}`), domain.Credentials("", "", ""))

	if result.Succeeded {
		t.Fatal("expected failure")
	}

	a := result.Attempts[0]
	if a.Outcome != domain.OutcomeRemoteError || a.StatusCode != http.StatusInternalServerError {
		t.Errorf("unexpected attempt: %+v", a)
	}
	want := "HTTP 500: " + strings.Repeat("x", maxBodyLen) + "..."
	if a.Message != want {
		t.Errorf("expected truncated message of len %d, got len %d", len(want), len(a.Message))
	}
}

func TestUploader_RemoteErrorTruncatesMultibyteBody(t *testing.T) {
	body := "x" + strings.Repeat("я", 250)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, body)
	}))
	defer server.Close()

	up := NewUploader(Config{BaseURL: server.URL})
	result := up.Upload(context.Background(), testPayload(t, `{}`), domain.Credentials("", "", ""))

	msg := result.Attempts[0].Message
	if !utf8.ValidString(msg) {
		t.Fatalf("message is not valid UTF-8: %q", msg)
	}
	want := "HTTP 502: x" + strings.Repeat("я", maxBodyLen-1) + "..."
	if msg != want {
		t.Errorf("expected %d characters of body, got message %q", maxBodyLen, msg)
	}
}

func TestUploader_AuthStatusWithBrokenBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Заявленная длина больше записанной: сервер обрывает соединение
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":`)
	}))
	defer server.Close()

	up := NewUploader(Config{BaseURL: server.URL})
	result := up.Upload(context.Background(), testPayload(t, `{}`), domain.Credentials("", "", ""))

	if result.Succeeded {
		t.Fatal("expected failure")
	}
	for _, a := range result.Attempts {
		if a.Outcome != domain.OutcomeUnauthorized || a.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected unauthorized 401 for %s, got %s %d (%s)", a.Endpoint, a.Outcome, a.StatusCode, a.Message)
		}
	}
}

func TestUploader_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	up := NewUploader(Config{BaseURL: server.URL})
	up.timeout = 50 * time.Millisecond
	up.endpoints = []string{"/api/v1/workflows"}

	result := up.Upload(context.Background(), testPayload(t, `{}`), domain.Credentials("", "", ""))

	if result.Succeeded {
		t.Fatal("expected failure")
	}
	if got := result.Attempts[0].Outcome; got != domain.OutcomeTimeout {
		t.Errorf("expected timeout, got %s", got)
	}
}

func TestUploader_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	up := NewUploader(Config{BaseURL: url})
	result := up.Upload(context.Background(), testPayload(t, `{}`), domain.Credentials("", "", ""))

	if result.Succeeded {
		t.Fatal("expected failure")
	}
	if len(result.Attempts) != len(UploadEndpoints) {
		t.Errorf("expected every endpoint to be tried, got %d attempts", len(result.Attempts))
	}
	for _, a := range result.Attempts {
		if a.Outcome != domain.OutcomeConnectionFailure {
			t.Errorf("expected connection_failure, got %s", a.Outcome)
		}
	}
}

func TestUploader_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	up := NewUploader(Config{BaseURL: server.URL})
	result := up.Upload(ctx, testPayload(t, `{}`), domain.Credentials("", "", ""))

	if result.Succeeded {
		t.Fatal("expected failure")
	}
	if len(result.Attempts) != 0 {
		t.Errorf("expected no attempts, got %d", len(result.Attempts))
	}
}

func TestUploader_Metrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "m1"}`))
	}))
	defer server.Close()

	metrics := telemetry.NewMetrics()
	up := NewUploader(Config{BaseURL: server.URL, Metrics: metrics})
	up.Upload(context.Background(), testPayload(t, `{}`), domain.Credentials("", "", ""))

	families, err := metrics.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{"wfimport_upload_attempts_total", "wfimport_imports_total"} {
		if !found[name] {
			t.Errorf("metric %s not recorded", name)
		}
	}
}
