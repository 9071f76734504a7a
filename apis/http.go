package apis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

var client = http.Client{Timeout: 2 * time.Second}

// HTTPCredentials locates an HTTP state source. Basic auth is only sent
// when both username and password are set.
type HTTPCredentials struct {
	BaseURL  string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func newRequest(ctx context.Context, method, path string, body io.Reader, credentials HTTPCredentials) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, credentials.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credentials.Username != "" && credentials.Password != "" {
		req.SetBasicAuth(credentials.Username, credentials.Password)
	}
	return req, nil
}

// doRequest runs req and returns the body of a 2xx response.
func doRequest(req *http.Request, source string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, fmt.Errorf("%s request timed out", source)
		}
		return nil, fmt.Errorf("%s request failed: %w", source, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read %s response: %w", source, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s request returned status %d: %s", source, resp.StatusCode, body)
	}
	return body, nil
}
