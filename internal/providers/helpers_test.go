package providers

import (
	"net/http"
	"testing"
	"time"
)

// rewriteTransport rewrites all request URLs to point at the test server.
type rewriteTransport struct {
	base    http.RoundTripper
	baseURL string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = "http"
	req.URL.Host = t.baseURL[len("http://"):]
	if t.base != nil {
		return t.base.RoundTrip(req)
	}
	return http.DefaultTransport.RoundTrip(req)
}

func redirectClient(serverURL string) *http.Client {
	return &http.Client{Transport: &rewriteTransport{baseURL: serverURL}}
}

// fastBackoff shrinks the retry delay for the duration of a test.
func fastBackoff(t *testing.T) {
	t.Helper()
	orig := backoffBase
	backoffBase = time.Millisecond
	t.Cleanup(func() { backoffBase = orig })
}
