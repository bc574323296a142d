package test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestHealthDataDemoWeek() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token, _, _ := s.signupNewUser(ctx, t)

	// signup seeds seven days of demo data
	resp, respBytes := s.authorizedRequest(ctx, t, "GET", "/health/data", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(respBytes, &records))
	require.Len(t, records, 7)
	for _, record := range records {
		assert.NotZero(t, record["steps"])
		assert.NotZero(t, record["sleep"])
	}
}

func (s *IntegrationTestSuite) TestHealthDataAddMetric() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token, _, _ := s.signupNewUser(ctx, t)
	date := time.Now().UTC().Format("2006-01-02")

	t.Run("add steps for today", func(t *testing.T) {
		body := []byte(`{"metric": "steps", "value": 12345, "date": "` + date + `"}`)
		resp, respBytes := s.authorizedRequest(ctx, t, "POST", "/health/metrics", token, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var record map[string]any
		require.NoError(t, json.Unmarshal(respBytes, &record))
		assert.EqualValues(t, 12345, record["steps"])
	})

	t.Run("manual write merges, does not wipe the rest", func(t *testing.T) {
		body := []byte(`{"metric": "weight", "value": 71.4, "date": "` + date + `"}`)
		resp, respBytes := s.authorizedRequest(ctx, t, "POST", "/health/metrics", token, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var record map[string]any
		require.NoError(t, json.Unmarshal(respBytes, &record))
		assert.EqualValues(t, 71.4, record["weight"])
		// the steps written above survived the weight update
		assert.EqualValues(t, 12345, record["steps"])
	})

	t.Run("unknown metric rejected", func(t *testing.T) {
		body := []byte(`{"metric": "mood", "value": 5}`)
		resp, _ := s.authorizedRequest(ctx, t, "POST", "/health/metrics", token, body)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("negative value rejected", func(t *testing.T) {
		body := []byte(`{"metric": "steps", "value": -1}`)
		resp, _ := s.authorizedRequest(ctx, t, "POST", "/health/metrics", token, body)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("get record for the date", func(t *testing.T) {
		resp, respBytes := s.authorizedRequest(ctx, t, "GET", "/health/metrics?date="+date, token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var record map[string]any
		require.NoError(t, json.Unmarshal(respBytes, &record))
		assert.EqualValues(t, 12345, record["steps"])
		assert.EqualValues(t, 71.4, record["weight"])
	})
}

func (s *IntegrationTestSuite) TestHealthDataChartAndSummary() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token, _, _ := s.signupNewUser(ctx, t)

	t.Run("chart has seven slots", func(t *testing.T) {
		resp, respBytes := s.authorizedRequest(ctx, t, "GET", "/health/chart/steps", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var series map[string]any
		require.NoError(t, json.Unmarshal(respBytes, &series))

		labels, ok := series["labels"].([]any)
		require.True(t, ok)
		values, ok := series["values"].([]any)
		require.True(t, ok)
		assert.Len(t, labels, 7)
		assert.Len(t, values, 7)

		// last label is today's weekday
		assert.Equal(t, time.Now().UTC().Format("Mon"), labels[6])
	})

	t.Run("chart for unknown metric", func(t *testing.T) {
		resp, _ := s.authorizedRequest(ctx, t, "GET", "/health/chart/mood", token, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("weekly summary over demo data", func(t *testing.T) {
		resp, respBytes := s.authorizedRequest(ctx, t, "GET", "/health/summary/weekly", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var trend map[string]any
		require.NoError(t, json.Unmarshal(respBytes, &trend))
		assert.Equal(t, "success", trend["status"])
		assert.NotZero(t, trend["totalSteps"])

		// summary lines come from the (canned) assistant
		summary, ok := trend["summary"].([]any)
		require.True(t, ok)
		assert.Len(t, summary, 3)
	})

	t.Run("weekly summary with invalid window", func(t *testing.T) {
		resp, _ := s.authorizedRequest(ctx, t, "GET", "/health/summary/weekly?window=90", token, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func (s *IntegrationTestSuite) TestHealthDataExport() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token, _, _ := s.signupNewUser(ctx, t)

	t.Run("csv export", func(t *testing.T) {
		resp, respBytes := s.authorizedRequest(ctx, t, "GET", "/health/data/export", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "health_data.csv")

		csvReader := csv.NewReader(strings.NewReader(string(respBytes)))
		rows, err := csvReader.ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 8) // header + demo week
		assert.Equal(t, []string{"date", "steps", "weight", "sleep_hours", "heart_rate", "activity_minutes", "calories"}, rows[0])
	})

	t.Run("json export", func(t *testing.T) {
		resp, respBytes := s.authorizedRequest(ctx, t, "GET", "/health/data/export?format=json", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "health_data.json")

		var records []map[string]any
		require.NoError(t, json.Unmarshal(respBytes, &records))
		assert.Len(t, records, 7)
	})

	t.Run("bogus format", func(t *testing.T) {
		resp, _ := s.authorizedRequest(ctx, t, "GET", "/health/data/export?format=xml", token, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func (s *IntegrationTestSuite) TestHealthDataUnauthorized() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, path := range []string{"/health/data", "/health/metrics", "/health/summary/weekly"} {
		resp, _ := s.authorizedRequest(ctx, t, "GET", path, "bogus-token", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "path: %s", path)
	}
}
