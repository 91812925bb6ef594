package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRequestLogPreservesFlusher(t *testing.T) {
	handler := WithRequestLog("test", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("wrapped writer does not implement http.Flusher")
		}
		if _, err := w.Write([]byte("fragment")); err != nil {
			t.Fatalf("write: %v", err)
		}
		f.Flush()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat", nil))

	if !rec.Flushed {
		t.Fatal("expected Flush to reach the underlying writer")
	}
}

func TestWithRequestLogRecordsStatus(t *testing.T) {
	handler := WithRequestLog("test", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusTeapot)
	}
}
