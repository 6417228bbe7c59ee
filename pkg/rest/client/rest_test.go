package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURLStr = "http://test.local:8080"
const baseURLPathStr = "http://test.local:8080/webmail"

var baseURL *url.URL

var baseURLPath *url.URL

func init() {
	var err error
	baseURL, err = url.Parse(baseURLStr)
	if err != nil {
		panic(err)
	}
	baseURLPath, err = url.Parse(baseURLPathStr)
	if err != nil {
		panic(err)
	}
}

type mockHTTPClient struct {
	req        *http.Request
	statusCode int
	body       string
}

func (m *mockHTTPClient) Do(req *http.Request) (resp *http.Response, err error) {
	m.req = req
	if m.statusCode == 0 {
		m.statusCode = 200
	}
	resp = &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}
	return
}

func (m *mockHTTPClient) ReqBody() []byte {
	r, err := m.req.GetBody()
	if err != nil {
		return nil
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil
	}
	_ = r.Close()
	return body
}

func TestDoTable(t *testing.T) {
	tests := []struct {
		method     string
		uri        string
		wantMethod string
		base       *url.URL
		wantURL    string
		wantBody   []byte
	}{
		{method: "GET", wantMethod: "GET", uri: "/doget", base: baseURL, wantURL: baseURLStr + "/doget", wantBody: []byte("Test body 1")},
		{method: "POST", wantMethod: "POST", uri: "/dopost", base: baseURL, wantURL: baseURLStr + "/dopost", wantBody: []byte("Test body 2")},
		{method: "GET", wantMethod: "GET", uri: "/doget", base: baseURLPath, wantURL: baseURLPathStr + "/doget", wantBody: []byte("Test body 3")},
		{method: "POST", wantMethod: "POST", uri: "/dopost", base: baseURLPath, wantURL: baseURLPathStr + "/dopost", wantBody: []byte("Test body 4")},
	}
	for _, test := range tests {
		testname := fmt.Sprintf("%s,%s", test.method, test.wantURL)
		t.Run(testname, func(t *testing.T) {
			ctx := context.Background()
			mth := &mockHTTPClient{}
			c := &restClient{client: mth, baseURL: test.base}

			resp, err := c.do(ctx, test.method, test.uri, "text/plain", test.wantBody)
			require.NoError(t, err)
			err = resp.Body.Close()
			require.NoError(t, err)

			assert.Equal(t, test.wantMethod, mth.req.Method)
			assert.Equal(t, test.wantURL, mth.req.URL.String())
			assert.Equal(t, test.wantBody, mth.ReqBody())
			assert.Equal(t, "text/plain", mth.req.Header.Get("Content-Type"))
		})
	}
}

func TestDoIdentityHeaders(t *testing.T) {
	mth := &mockHTTPClient{}
	c := &restClient{
		client:   mth,
		baseURL:  baseURL,
		session:  "sess-1",
		user:     "ann",
		language: "de_DE",
	}

	resp, err := c.do(context.Background(), "GET", "/doget", "", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "sess-1", mth.req.Header.Get("X-Session-Id"))
	assert.Equal(t, "ann", mth.req.Header.Get("X-User"))
	assert.Equal(t, "de_DE", mth.req.Header.Get("X-Language"))
	assert.Equal(t, "application/json", mth.req.Header.Get("Accept"))
	assert.Empty(t, mth.req.Header.Get("Content-Type"))

	// Unset identity is not sent.
	c = &restClient{client: mth, baseURL: baseURL}
	resp, err = c.do(context.Background(), "GET", "/doget", "", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.NotContains(t, mth.req.Header, "X-Session-Id")
}

func TestDoJSON(t *testing.T) {
	mth := &mockHTTPClient{
		body: `{"foo": "bar"}`,
	}
	c := &restClient{client: mth, baseURL: baseURL}

	var v map[string]any
	err := c.doJSON(context.Background(), "GET", "/doget", "", nil, &v)
	require.NoError(t, err)

	assert.Equal(t, "GET", mth.req.Method)
	assert.Equal(t, baseURLStr+"/doget", mth.req.URL.String())
	assert.Equal(t, "bar", v["foo"])
}

func TestDoJSONNilV(t *testing.T) {
	mth := &mockHTTPClient{}
	c := &restClient{client: mth, baseURL: baseURL}

	err := c.doJSON(context.Background(), "GET", "/doget", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, baseURLStr+"/doget", mth.req.URL.String())
}

func TestDoJSONStatus(t *testing.T) {
	tests := []struct {
		status  int
		wantErr bool
	}{
		{status: 200},
		{status: 204},
		{status: 404, wantErr: true},
		{status: 500, wantErr: true},
	}
	for _, test := range tests {
		t.Run(fmt.Sprint(test.status), func(t *testing.T) {
			mth := &mockHTTPClient{statusCode: test.status}
			c := &restClient{client: mth, baseURL: baseURL}
			err := c.doJSON(context.Background(), "POST", "/dopost", "", nil, nil)
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
