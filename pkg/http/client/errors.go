package client

import "fmt"

// UpstreamError is returned when the service answers with a non-200 status.
type UpstreamError struct {
	URL        string
	StatusCode int
	// Snippet is the start of the response body, for logs.
	Snippet string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.URL, e.StatusCode)
}

const maxSnippet = 200

// CheckStatus returns an *UpstreamError unless resp is a 200.
func CheckStatus(rawURL string, resp *Response) error {
	if resp.OK() {
		return nil
	}
	snippet := resp.Body
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}
	return &UpstreamError{URL: rawURL, StatusCode: resp.StatusCode, Snippet: string(snippet)}
}

// RequestError is a request that got no response at all: DNS, connection
// or timeout failures.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("requesting %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
