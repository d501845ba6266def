package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBucketKeyRotatesWithWindow(t *testing.T) {
	// 20 seconds into a window.
	now := time.Unix(1_700_000_000, 0)

	first := bucketKey("a@x.com", now)
	sameWindow := bucketKey("a@x.com", now.Add(30*time.Second))
	nextWindow := bucketKey("a@x.com", now.Add(rateWindow))

	if first != sameWindow {
		t.Fatalf("key changed inside the window: %q vs %q", first, sameWindow)
	}
	if first == nextWindow {
		t.Fatal("key must rotate when the window rolls over")
	}
	if bucketKey("b@x.com", now) == first {
		t.Fatal("keys must be per caller")
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest("POST", "/chats", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{`"method":"POST"`, `"path":"/chats"`, `"status":201`, `"bytes":2`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line missing %s: %s", want, out)
		}
	}
}

func TestLoggerQuietsProbes(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/health", "/metrics"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}
	if buf.Len() != 0 {
		t.Fatalf("probe requests logged at info level: %s", buf.String())
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/chats", nil))
	if buf.Len() == 0 {
		t.Fatal("chat traffic must log at info level")
	}
}
