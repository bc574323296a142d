package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestSignupAndLogin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, userID, email := s.signupNewUser(ctx, t)

	t.Run("login with good creds", func(t *testing.T) {
		resp, respBytes := s.doLogin(ctx, t, email, testPassword)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var loginResp map[string]any
		require.NoError(t, json.Unmarshal(respBytes, &loginResp))
		assert.NotEmpty(t, loginResp["token"])
		assert.EqualValues(t, userID, loginResp["userId"])
	})

	t.Run("login with bad password", func(t *testing.T) {
		resp, respBytes := s.doLogin(ctx, t, email, "wrong-password")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "error, wrong credentials", strings.TrimSpace(string(respBytes)))
	})

	t.Run("login with unknown email", func(t *testing.T) {
		resp, _ := s.doLogin(ctx, t, "nobody@example.org", testPassword)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("login then logout", func(t *testing.T) {
		resp, respBytes := s.doLogin(ctx, t, email, testPassword)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var loginResp map[string]any
		require.NoError(t, json.Unmarshal(respBytes, &loginResp))
		token, ok := loginResp["token"].(string)
		require.True(t, ok)

		logoutResp, logoutBytes := s.authorizedRequest(ctx, t, "GET", "/a/logout", token, nil)
		require.Equal(t, http.StatusOK, logoutResp.StatusCode)
		assert.Equal(t, "logged-out", string(logoutBytes))

		// session is gone now
		profileResp, _ := s.authorizedRequest(ctx, t, "GET", "/user/profile", token, nil)
		assert.Equal(t, http.StatusUnauthorized, profileResp.StatusCode)
	})

	t.Run("duplicate signup", func(t *testing.T) {
		signupReqJson, err := json.Marshal(signupRequest{
			Email:    email,
			Password: testPassword,
		})
		require.NoError(t, err)

		req, err := http.NewRequestWithContext(
			ctx, "POST", fmt.Sprintf("%s/a/signup", serverEndpoint),
			strings.NewReader(string(signupReqJson)),
		)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func (s *IntegrationTestSuite) TestUserProfileAndSettings() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token, userID, email := s.signupNewUser(ctx, t)

	t.Run("get profile", func(t *testing.T) {
		resp, respBytes := s.authorizedRequest(ctx, t, "GET", "/user/profile", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var profile map[string]any
		require.NoError(t, json.Unmarshal(respBytes, &profile))
		assert.Equal(t, email, profile["email"])
	})

	t.Run("update profile", func(t *testing.T) {
		update := []byte(`{"firstName": "Ada", "lastName": "Lovelace"}`)
		resp, respBytes := s.authorizedRequest(ctx, t, "PUT", "/user/profile", token, update)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, fmt.Sprintf(`{"updatedId": %d}`, userID), string(respBytes))

		getResp, getBytes := s.authorizedRequest(ctx, t, "GET", "/user/profile", token, nil)
		require.Equal(t, http.StatusOK, getResp.StatusCode)

		var profile map[string]any
		require.NoError(t, json.Unmarshal(getBytes, &profile))
		assert.Equal(t, "Ada", profile["firstName"])
		assert.Equal(t, "Lovelace", profile["lastName"])
	})

	t.Run("settings defaults then update", func(t *testing.T) {
		resp, respBytes := s.authorizedRequest(ctx, t, "GET", "/user/settings", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var settings map[string]any
		require.NoError(t, json.Unmarshal(respBytes, &settings))
		assert.EqualValues(t, true, settings["notificationsEnabled"])

		update := []byte(`{"weightGoalKilos": 72.5, "dailyStepsGoal": 12000, "notificationsEnabled": false}`)
		updateResp, _ := s.authorizedRequest(ctx, t, "PUT", "/user/settings", token, update)
		require.Equal(t, http.StatusOK, updateResp.StatusCode)

		getResp, getBytes := s.authorizedRequest(ctx, t, "GET", "/user/settings", token, nil)
		require.Equal(t, http.StatusOK, getResp.StatusCode)
		require.NoError(t, json.Unmarshal(getBytes, &settings))
		assert.EqualValues(t, 12000, settings["dailyStepsGoal"])
		assert.EqualValues(t, 72.5, settings["weightGoalKilos"])
		assert.EqualValues(t, false, settings["notificationsEnabled"])
	})
}

func (s *IntegrationTestSuite) TestAccountDeletionFlow() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token, _, _ := s.signupNewUser(ctx, t)

	// nothing pending yet
	resp, _ := s.authorizedRequest(ctx, t, "GET", "/user/deletion", token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// request deletion
	resp, respBytes := s.authorizedRequest(ctx, t, "POST", "/user/deletion", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var deletion map[string]any
	require.NoError(t, json.Unmarshal(respBytes, &deletion))
	assert.NotEmpty(t, deletion["scheduledFor"])

	// requesting again conflicts
	resp, _ = s.authorizedRequest(ctx, t, "POST", "/user/deletion", token, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// now it shows as pending
	resp, _ = s.authorizedRequest(ctx, t, "GET", "/user/deletion", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// cancel, and it is gone
	resp, _ = s.authorizedRequest(ctx, t, "POST", "/user/deletion/cancel", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.authorizedRequest(ctx, t, "GET", "/user/deletion", token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
