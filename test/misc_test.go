package test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) getPublic(ctx context.Context, path string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", serverEndpoint+path, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	respBytes, err := io.ReadAll(resp.Body)
	return resp, respBytes, err
}

func (s *IntegrationTestSuite) TestRootAndVersion() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp, body, err := s.getPublic(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "I'm OK, thanks ;)", string(body))

	resp, body, err = s.getPublic(ctx, "/version")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "test-version-info", string(body))
}

func (s *IntegrationTestSuite) TestSupportFaq() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp, body, err := s.getPublic(ctx, "/support/faq")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []map[string]string
	require.NoError(t, json.Unmarshal(body, &entries))
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		assert.NotEmpty(t, entry["question"])
		assert.NotEmpty(t, entry["answer"])
	}
}

func (s *IntegrationTestSuite) TestUnknownPath() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// unknown paths are not in the auth allow-list, so without a token
	// they bounce off the auth middleware
	resp, _, err := s.getPublic(ctx, "/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
