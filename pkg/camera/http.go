package camera

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/teslashibe/go-camsettings/internal/httpc"
)

// HTTPOpener reads the capability report from a camera daemon that serves
// the flattened form over HTTP. GET returns the report, POST applies
// current-value parameters.
type HTTPOpener struct {
	URL    string
	Client *http.Client
}

// NewHTTPOpener creates an opener for url using the shared client.
func NewHTTPOpener(url string) *HTTPOpener {
	return &HTTPOpener{URL: url, Client: httpc.Client}
}

// Open fetches the report. The returned handle holds no connection;
// SetParameters is bounded by the client timeout.
func (o *HTTPOpener) Open(ctx context.Context) (Device, error) {
	body, err := httpc.GetText(ctx, o.Client, o.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotOpened, err)
	}
	return &httpDevice{opener: o, params: Unflatten(body)}, nil
}

type httpDevice struct {
	opener   *HTTPOpener
	mu       sync.Mutex
	params   Parameters
	released bool
}

func (d *httpDevice) Parameters() (Parameters, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return Parameters{}, ErrReleased
	}
	return d.params.Clone(), nil
}

func (d *httpDevice) SetParameters(p Parameters) error {
	d.mu.Lock()
	released := d.released
	d.mu.Unlock()
	if released {
		return ErrReleased
	}

	if _, err := httpc.PostText(context.Background(), d.opener.Client, d.opener.URL, p.Flatten()); err != nil {
		return fmt.Errorf("failed to apply parameters: %w", err)
	}
	return nil
}

func (d *httpDevice) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = true
	return nil
}
