package fred_test

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"macroagg/internal/dataset"
	"macroagg/internal/etlerr"
	"macroagg/internal/source/fred"
)

func okResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	// Assert: a valid key should return a client.
	client, err := fred.NewClient("test")
	require.NoError(t, err)
	require.NotNil(t, client)
	require.Equal(t, dataset.JSONAPI, client.Kind())
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Parallel()

	client, err := fred.NewClient("")
	require.Nil(t, client)
	var ce *etlerr.ConfigError
	require.True(t, errors.As(err, &ce), "expected ConfigError, got %v", err)
}

func TestWithBaseURL(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: the request goes to the overridden endpoint
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "example.test", req.URL.Host)
			require.Equal(t, "/fred/series/observations", req.URL.Path)
			return okResponse(`{"observations":[]}`), nil
		}).
		Times(1)

	client, err := fred.NewClient("test",
		fred.WithHTTPClient(httpClient),
		fred.WithBaseURL("https://example.test/fred/series/observations"))
	require.NoError(t, err)

	// Act
	_, err = client.Fetch(t.Context(), "GDP")
	require.NoError(t, err)
}

func TestWithHeader(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: the extra header is sent
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "value", req.Header.Get("X-Test"))
			return okResponse(`{"observations":[]}`), nil
		}).
		Times(1)

	client, err := fred.NewClient("test",
		fred.WithHTTPClient(httpClient),
		fred.WithHeader(http.Header{"X-Test": []string{"value"}}))
	require.NoError(t, err)

	_, err = client.Fetch(t.Context(), "GDP")
	require.NoError(t, err)
}
