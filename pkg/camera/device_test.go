package camera

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReadParameters_ReleasesHandle(t *testing.T) {
	opener := NewStaticOpenerFromString("effect-values=none,mono")

	p, err := ReadParameters(context.Background(), opener)
	if err != nil {
		t.Fatalf("ReadParameters: %v", err)
	}
	if got, _ := p.Get(SupportedEffect); got != "none,mono" {
		t.Errorf("effect-values = %q", got)
	}
	if opener.Opens() != 1 || opener.Releases() != 1 {
		t.Errorf("opens=%d releases=%d, want 1/1", opener.Opens(), opener.Releases())
	}
}

func TestReadParameters_OpenError(t *testing.T) {
	opener := NewStaticOpener(Parameters{})
	opener.OpenErr = ErrNotOpened

	_, err := ReadParameters(context.Background(), opener)
	if !errors.Is(err, ErrNotOpened) {
		t.Errorf("err = %v, want ErrNotOpened", err)
	}
}

func TestStaticDevice_UseAfterRelease(t *testing.T) {
	opener := NewStaticOpener(Parameters{})
	dev, err := opener.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := dev.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := dev.Release(); err != nil {
		t.Errorf("second Release should be a no-op, got %v", err)
	}
	if opener.Releases() != 1 {
		t.Errorf("Releases = %d, want 1", opener.Releases())
	}
	if _, err := dev.Parameters(); !errors.Is(err, ErrReleased) {
		t.Errorf("Parameters after release = %v, want ErrReleased", err)
	}
	if err := dev.SetParameters(Parameters{}); !errors.Is(err, ErrReleased) {
		t.Errorf("SetParameters after release = %v, want ErrReleased", err)
	}
}

func TestStaticOpener_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewStaticOpener(Parameters{}).Open(ctx); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestOpenerFunc(t *testing.T) {
	inner := NewStaticOpenerFromString("iso-values=auto")
	var called bool
	opener := OpenerFunc(func(ctx context.Context) (Device, error) {
		called = true
		return inner.Open(ctx)
	})

	if _, err := ReadParameters(context.Background(), opener); err != nil {
		t.Fatalf("ReadParameters: %v", err)
	}
	if !called {
		t.Error("OpenerFunc was not called")
	}
}

func TestPushConfig(t *testing.T) {
	opener := NewStaticOpener(Parameters{})
	cfg := DefaultConfig()
	cfg.Effect = "sepia"

	if err := PushConfig(context.Background(), opener, cfg); err != nil {
		t.Fatalf("PushConfig: %v", err)
	}
	applied := opener.Applied()
	if got, _ := applied.Get(ParamEffect); got != "sepia" {
		t.Errorf("applied effect = %q, want sepia", got)
	}
	if opener.Releases() != 1 {
		t.Errorf("handle not released")
	}
}

func TestHTTPOpener(t *testing.T) {
	var posted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, "whitebalance-values=auto,daylight;iso-values=auto,100")
		case http.MethodPost:
			data, _ := io.ReadAll(r.Body)
			posted = string(data)
		}
	}))
	defer srv.Close()

	opener := NewHTTPOpener(srv.URL)
	dev, err := opener.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Release()

	p, err := dev.Parameters()
	if err != nil {
		t.Fatalf("Parameters: %v", err)
	}
	if got := p.Supported(SupportedWhiteBalance); len(got) != 2 || got[1] != "daylight" {
		t.Errorf("whitebalance-values = %v", got)
	}

	if err := dev.SetParameters(Unflatten("iso=100")); err != nil {
		t.Fatalf("SetParameters: %v", err)
	}
	if posted != "iso=100" {
		t.Errorf("posted = %q, want iso=100", posted)
	}
}

func TestHTTPOpener_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPOpener(srv.URL).Open(context.Background())
	if !errors.Is(err, ErrNotOpened) {
		t.Errorf("err = %v, want ErrNotOpened", err)
	}
}
