package httpc

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGetText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		io.WriteString(w, "effect-values=none,mono")
	}))
	defer srv.Close()

	got, err := GetText(context.Background(), nil, srv.URL)
	if err != nil {
		t.Fatalf("GetText: %v", err)
	}
	if got != "effect-values=none,mono" {
		t.Errorf("got %q", got)
	}
}

func TestGetText_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "camera busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := GetText(context.Background(), srv.Client(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "camera busy") {
		t.Errorf("error should carry status and body, got %v", err)
	}
}

func TestPostText(t *testing.T) {
	var gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if _, err := PostText(context.Background(), nil, srv.URL, "iso=400"); err != nil {
		t.Fatalf("PostText: %v", err)
	}
	if gotBody != "iso=400" {
		t.Errorf("body = %q, want iso=400", gotBody)
	}
	if !strings.HasPrefix(gotType, "text/plain") {
		t.Errorf("content type = %q", gotType)
	}
}

func TestGetText_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := GetText(ctx, nil, srv.URL); err == nil {
		t.Error("expected error for canceled context")
	}
}
