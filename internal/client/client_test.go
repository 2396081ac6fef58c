package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordedRequest struct {
	Method      string
	Path        string
	RawPath     string
	ContentType string
	RequestID   string
	Body        string
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) wrap(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.reqs = append(r.reqs, recordedRequest{
			Method:      req.Method,
			Path:        req.URL.Path,
			RawPath:     req.URL.EscapedPath(),
			ContentType: req.Header.Get("Content-Type"),
			RequestID:   req.Header.Get(RequestIDHeader),
			Body:        string(b),
		})
		r.mu.Unlock()
		h(w, req)
	}
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestTriggerWithoutBody(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "Motion detection started."})
	}))
	defer srv.Close()

	c := New(ClientConfig{BaseURL: srv.URL})
	out, err := c.Trigger(context.Background(), "/api/enable_detection", "")
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if out.Status != "Motion detection started." {
		t.Fatalf("status = %q", out.Status)
	}

	reqs := rec.all()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].Method != http.MethodPost || reqs[0].Path != "/api/enable_detection" {
		t.Fatalf("unexpected request %+v", reqs[0])
	}
	if reqs[0].Body != "" || reqs[0].ContentType != "" {
		t.Fatalf("expected no body and no content type, got %+v", reqs[0])
	}
	if reqs[0].RequestID == "" {
		t.Fatal("expected request id header")
	}
}

func TestTriggerWithBody(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"filename": "/captures/clip1.mp4"})
	}))
	defer srv.Close()

	c := New(ClientConfig{BaseURL: srv.URL})
	out, err := c.Trigger(context.Background(), "/api/record", `{"duration": 5}`)
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if out.Filename != "/captures/clip1.mp4" {
		t.Fatalf("filename = %q", out.Filename)
	}
	reqs := rec.all()
	if reqs[0].ContentType != "application/json" || reqs[0].Body != `{"duration": 5}` {
		t.Fatalf("unexpected request %+v", reqs[0])
	}
}

func TestTriggerErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		body    string
		wantErr string
	}{
		{
			name: "server error json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid duration"})
			},
			wantErr: "Invalid duration",
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "<html>oops</html>")
			},
			wantErr: "failed to parse response",
		},
		{
			name: "invalid body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				t.Error("request should not be sent")
			},
			body:    `{"duration":`,
			wantErr: "not valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := New(ClientConfig{BaseURL: srv.URL})
			_, err := c.Trigger(context.Background(), "/api/record", tt.body)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFetchCaptureEscapesFilename(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.wrap(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("binary-data"))
	}))
	defer srv.Close()

	c := New(ClientConfig{BaseURL: srv.URL})
	var buf bytes.Buffer
	n, err := c.FetchCapture(context.Background(), "/data/my clip.mp4", &buf)
	if err != nil {
		t.Fatalf("FetchCapture: %v", err)
	}
	if n != int64(len("binary-data")) || buf.String() != "binary-data" {
		t.Fatalf("unexpected payload %d %q", n, buf.String())
	}

	reqs := rec.all()
	if len(reqs) != 1 || reqs[0].Method != http.MethodGet {
		t.Fatalf("unexpected requests %+v", reqs)
	}
	if reqs[0].RawPath != "/api/captures/%2Fdata%2Fmy%20clip.mp4" {
		t.Fatalf("raw path = %q", reqs[0].RawPath)
	}
}

func TestFetchCaptureNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(ClientConfig{BaseURL: srv.URL})
	var buf bytes.Buffer
	if _, err := c.FetchCapture(context.Background(), "clip1.mp4", &buf); err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written on error, got %q", buf.String())
	}
}

func TestListCapturesAndHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/captures":
			writeJSON(w, http.StatusOK, map[string][]string{"captures": {"a.mp4", "b.jpg"}})
		case "/api/status":
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(ClientConfig{BaseURL: srv.URL + "/"})
	caps, err := c.ListCaptures(context.Background())
	if err != nil {
		t.Fatalf("ListCaptures: %v", err)
	}
	if len(caps) != 2 || caps[0] != "a.mp4" {
		t.Fatalf("captures = %v", caps)
	}

	st, err := c.Health()
	if err != nil || st != "ok" {
		t.Fatalf("Health = %q, %v", st, err)
	}
}

func TestGetOpenAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/openapi.json":
			writeJSON(w, http.StatusOK, map[string]any{
				"openapi": "3.0.2",
				"info":    map[string]string{"title": "Motionberry", "version": "1"},
				"paths": map[string]any{
					"/api/snapshot": map[string]any{"post": map[string]string{"summary": "Snapshot"}},
					"/api/captures/{filename}": map[string]any{
						"summary":    "Captured file",
						"parameters": []map[string]any{{"name": "filename", "in": "path", "required": true}},
						"get":        map[string]string{"summary": "Download a capture"},
					},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(ClientConfig{BaseURL: srv.URL})
	doc, err := c.GetOpenAPI(context.Background(), "")
	if err != nil {
		t.Fatalf("GetOpenAPI: %v", err)
	}
	ops := doc.Operations()
	if doc.Info.Title != "Motionberry" || len(ops) != 2 {
		t.Fatalf("unexpected doc %+v", doc)
	}
	if ops[0].Method != "GET" || ops[0].Path != "/api/captures/{filename}" || ops[0].Summary != "Download a capture" {
		t.Fatalf("first operation = %+v", ops[0])
	}

	_, err = c.GetOpenAPI(context.Background(), "/missing.json")
	if err == nil || !strings.Contains(err.Error(), "status: 404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestStreamURL(t *testing.T) {
	tests := []struct {
		base    string
		path    string
		want    string
		wantErr bool
	}{
		{base: "http://pi.local:5000/", want: "http://pi.local:5000/api/status_stream"},
		{base: "http://pi.local:5000", path: "events", want: "http://pi.local:5000/events"},
		{base: "http://pi.local", path: "http://other/stream", want: "http://other/stream"},
		{base: "", wantErr: true},
		{base: "ftp://pi.local", wantErr: true},
	}
	for _, tt := range tests {
		c := New(ClientConfig{BaseURL: tt.base, StreamPath: tt.path})
		got, err := c.StreamURL()
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.base)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q %q: got %q, %v want %q", tt.base, tt.path, got, err, tt.want)
		}
	}
}

func TestStreamRequest(t *testing.T) {
	c := New(ClientConfig{BaseURL: "http://pi.local:5000"})

	req, err := c.StreamRequest(context.Background(), "")
	if err != nil {
		t.Fatalf("StreamRequest: %v", err)
	}
	if req.URL.String() != "http://pi.local:5000/api/status_stream" {
		t.Fatalf("url = %s", req.URL)
	}
	if req.Header.Get("Accept") != "text/event-stream" || req.Header.Get(RequestIDHeader) == "" {
		t.Fatalf("headers = %v", req.Header)
	}
	if _, ok := req.Header["Last-Event-Id"]; ok {
		t.Fatal("fresh stream should not send Last-Event-ID")
	}

	req, err = c.StreamRequest(context.Background(), "42")
	if err != nil {
		t.Fatalf("StreamRequest: %v", err)
	}
	if req.Header.Get("Last-Event-ID") != "42" {
		t.Fatalf("Last-Event-ID = %q", req.Header.Get("Last-Event-ID"))
	}

	if _, err := New(ClientConfig{}).StreamRequest(context.Background(), ""); err == nil {
		t.Fatal("expected error without base URL")
	}
}

func TestStreamClientHasNoTimeout(t *testing.T) {
	c := New(ClientConfig{BaseURL: "http://pi.local:5000", Timeout: 200 * time.Millisecond})

	hc := c.StreamClient()
	if hc.Timeout != 0 {
		t.Fatalf("stream client timeout = %v", hc.Timeout)
	}
	if c.HTTP.GetClient().Timeout != 200*time.Millisecond {
		t.Fatalf("REST timeout changed to %v", c.HTTP.GetClient().Timeout)
	}
	if hc.Transport != c.HTTP.GetClient().Transport {
		t.Fatal("stream client should share the REST transport")
	}
}
