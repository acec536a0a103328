// Package fetch retrieves single resources over HTTP with error isolation.
// Retry policy belongs to the caller; by design there is none here.
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hlsget/hlsget/internal/domain"
)

type Fetcher struct {
	client *http.Client
}

// New builds a Fetcher whose requests are bounded by timeout. The timeout
// is the only thing standing between a hung source and a stuck worker, so
// zero is coerced to a sane bound.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch performs one GET and returns the body. Any transport failure or
// non-2xx status yields a transport_error; the filesystem is never touched.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.WrapErr(domain.CodeInvalidInput, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.WrapErr(domain.CodeTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.Errf(domain.CodeTransport, "HTTP %d fetching %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapErr(domain.CodeTransport, err)
	}

	return body, nil
}
