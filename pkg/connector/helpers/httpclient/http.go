package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient is the shared client for outbound requests. Package-level so
// tests can swap it for a test server's client. The editing service's
// document URLs have no SLA, hence the explicit timeout.
var HTTPClient = &http.Client{Timeout: 2 * time.Minute}

// FetchDocument downloads the edited document bytes from the URL the
// editing service handed us in a save callback.
func FetchDocument(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}
