package client

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStatus(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckStatus("https://x", &Response{StatusCode: http.StatusOK}))

	err := CheckStatus("https://x/Home/GetStations", &Response{
		StatusCode: http.StatusBadGateway,
		Body:       []byte(strings.Repeat("a", 500)),
	})
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
	assert.Len(t, upstream.Snippet, 200)
	assert.Equal(t, "upstream https://x/Home/GetStations returned status 502", err.Error())
}

func TestRequestError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	var err error = &RequestError{URL: "https://x/Home/GetStations", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "requesting https://x/Home/GetStations: connection refused", err.Error())
}
