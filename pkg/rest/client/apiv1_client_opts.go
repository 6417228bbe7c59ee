package client

import (
	"net/http"
	"time"
)

// ClientOptions is a struct that holds the options for the client
type ClientOptions struct {
	transport http.RoundTripper
	timeout   time.Duration
	session   string
	user      string
	language  string
}

// getDefaultClientOptions returns the default options for the client
func getDefaultClientOptions() *ClientOptions {
	return &ClientOptions{
		timeout: 30 * time.Second,
	}
}

// WithClientOptsTransport returns a function that sets the transport object
func WithClientOptsTransport(transport http.RoundTripper) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.transport = transport
	}
}

// WithClientOptsTimeout sets the overall request timeout.
func WithClientOptsTimeout(timeout time.Duration) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.timeout = timeout
	}
}

// WithClientOptsSession sets the webmail session the client acts for.
func WithClientOptsSession(session string) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.session = session
	}
}

// WithClientOptsUser sets the user the client acts for.
func WithClientOptsUser(user string) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.user = user
	}
}

// WithClientOptsLanguage selects the language of server messages, ex: "it_IT".
func WithClientOptsLanguage(language string) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.language = language
	}
}
