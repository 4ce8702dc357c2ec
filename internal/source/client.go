package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/finprospect/internal/resilience"
)

// defaultTimeout bounds every upstream call.
const defaultTimeout = 30 * time.Second

func rateLimit(perSec float64) rate.Limit {
	return rate.Limit(perSec)
}

// httpSource is the shared plumbing behind every registry client: bounded
// timeout, per-source rate limiting, and retry with exponential backoff for
// transient failures only.
type httpSource struct {
	name    string
	rank    int
	baseURL string
	hc      *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

func newHTTPSource(name string, rank int, baseURL string, hc *http.Client, limit rate.Limit, burst int) httpSource {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger(name, "fetch")
	return httpSource{
		name:    name,
		rank:    rank,
		baseURL: baseURL,
		hc:      hc,
		limiter: rate.NewLimiter(limit, burst),
		retry:   retry,
	}
}

func (s *httpSource) Name() string { return s.name }
func (s *httpSource) Rank() int    { return s.rank }

// getJSON fetches baseURL+path?query and decodes the response into out.
// 5xx responses and timeouts are retried; 4xx and malformed payloads are
// permanent. A 404 maps to ErrNotFound so callers can report "no record"
// without treating the source as unavailable.
func (s *httpSource) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return eris.Wrapf(err, "%s: rate limit wait", s.name)
	}

	reqURL := s.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	body, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "%s: build request", s.name)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.hc.Do(req)
		if err != nil {
			return nil, eris.Wrapf(err, "%s: request", s.name)
		}
		defer resp.Body.Close() //nolint:errcheck

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resilience.IsTransientHTTPStatus(resp.StatusCode):
			return nil, resilience.NewTransientError(
				eris.Errorf("%s: http %d from %s", s.name, resp.StatusCode, reqURL),
				resp.StatusCode,
			)
		case resp.StatusCode != http.StatusOK:
			return nil, resilience.NewPermanentError(
				eris.Errorf("%s: http %d from %s", s.name, resp.StatusCode, reqURL),
				resp.StatusCode,
			)
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrapf(err, "%s: read body", s.name)
		}
		return b, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return resilience.NewPermanentError(
			eris.Wrapf(err, "%s: parse response", s.name), 0,
		)
	}
	return nil
}
