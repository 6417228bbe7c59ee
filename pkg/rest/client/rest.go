package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Request headers identifying the webmail session.
const (
	sessionHeader  = "X-Session-Id"
	userHeader     = "X-User"
	languageHeader = "X-Language"
)

// httpClient allows http.Client to be mocked for tests
type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Generic REST restClient
type restClient struct {
	client   httpClient
	baseURL  *url.URL
	session  string
	user     string
	language string
}

// do performs an HTTP request with this client and returns the response.
func (c *restClient) do(
	ctx context.Context,
	method, uri, contentType string,
	body []byte,
) (*http.Response, error) {
	url := c.baseURL.JoinPath(uri)
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url.String(), r)
	if err != nil {
		return nil, fmt.Errorf("%s for %q: %v", method, url, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.session != "" {
		req.Header.Set(sessionHeader, c.session)
	}
	if c.user != "" {
		req.Header.Set(userHeader, c.user)
	}
	if c.language != "" {
		req.Header.Set(languageHeader, c.language)
	}

	return c.client.Do(req)
}

// doJSON performs an HTTP request with this client and marshalls the JSON response into v.
func (c *restClient) doJSON(
	ctx context.Context,
	method, uri, contentType string,
	body []byte,
	v any,
) error {
	resp, err := c.do(ctx, method, uri, contentType, body)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Body.Close()
	}()
	switch resp.StatusCode {
	case http.StatusOK:
		if v == nil {
			return nil
		}
		// Decode response body
		return json.NewDecoder(resp.Body).Decode(v)
	case http.StatusNoContent:
		return nil
	}

	return fmt.Errorf("%s for %q, unexpected %v: %s", method, uri, resp.StatusCode, resp.Status)
}
