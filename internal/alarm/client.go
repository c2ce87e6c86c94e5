package alarm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public ukrainealarm.com API host.
	DefaultBaseURL = "https://api.ukrainealarm.com"
	// APIKeyEnv is the environment variable holding the API key.
	APIKeyEnv = "UKRAINEALARM_API_KEY"

	apiKeyHeader = "X-API-Key"
	pathParam    = "path"
)

// Client talks to the ukrainealarm.com API. The API key is looked up on
// every call, so a missing key is reported per request rather than at start.
type Client struct {
	baseURL    string
	apiKey     func() string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. apiKey is called on every request.
func NewClient(baseURL string, apiKey func() string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// TargetURL joins path onto the base URL (adding a leading slash if needed)
// and sets every query parameter except "path".
func (c *Client) TargetURL(path string, query url.Values) (*url.URL, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid path %q: %v", path, err)}
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			if k == pathParam || len(vs) == 0 {
				continue
			}
			q.Set(k, vs[len(vs)-1])
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

// Relay performs a GET against path and returns the upstream response for
// passing through to a client. Errors are one of *ValidationError,
// *ConfigurationError, *TransportError or *StatusError, except for a 2xx
// JSON body that does not parse, which is returned as a plain error.
func (c *Client) Relay(ctx context.Context, path string, query url.Values) (*Response, error) {
	resp, target, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	isJSON := strings.Contains(contentType, "application/json")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Status: resp.StatusCode,
			Body:   readErrorBody(resp.Body, isJSON),
			Target: target.String(),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	out := &Response{
		Status:      resp.StatusCode,
		ContentType: contentType,
		Body:        body,
		IsJSON:      isJSON,
	}
	if isJSON {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&out.JSON); err != nil {
			return nil, fmt.Errorf("decode upstream json: %w", err)
		}
		if _, err := dec.Token(); err != io.EOF {
			return nil, errors.New("decode upstream json: unexpected data after top-level value")
		}
	}
	return out, nil
}

// Alerts fetches the current alert state of every region.
func (c *Client) Alerts(ctx context.Context) ([]RegionAlert, error) {
	var regions []RegionAlert
	if err := c.getJSON(ctx, "/api/v3/alerts", &regions); err != nil {
		return nil, err
	}
	return regions, nil
}

// LastActionIndex fetches the upstream change counter. It increases every
// time any alert is raised or cleared.
func (c *Client) LastActionIndex(ctx context.Context) (int64, error) {
	var st alertsStatus
	if err := c.getJSON(ctx, "/api/v3/alerts/status", &st); err != nil {
		return 0, err
	}
	return st.LastActionIndex, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, target, err := c.get(ctx, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")
		return &StatusError{
			Status: resp.StatusCode,
			Body:   readErrorBody(resp.Body, isJSON),
			Target: target.String(),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// get validates input, attaches the key and issues the request.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, *url.URL, error) {
	if path == "" {
		return nil, nil, &ValidationError{Msg: "Missing required query param: path"}
	}
	key := ""
	if c.apiKey != nil {
		key = c.apiKey()
	}
	if key == "" {
		return nil, nil, &ConfigurationError{Msg: APIKeyEnv + " is not set"}
	}

	target, err := c.TargetURL(path, query)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, nil, &ValidationError{Msg: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set(apiKeyHeader, key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &TransportError{Err: err}
	}
	return resp, target, nil
}

// readErrorBody decodes an error body for diagnostics. A JSON body that
// fails to parse yields nil; an unreadable text body yields "".
func readErrorBody(r io.Reader, isJSON bool) any {
	if isJSON {
		var v any
		if err := json.NewDecoder(r).Decode(&v); err != nil {
			return nil
		}
		return v
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return string(b)
}
