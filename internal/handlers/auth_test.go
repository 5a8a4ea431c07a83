package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/media-ranker/backend/internal/models"
	"github.com/emilythestrangee/media-ranker/backend/internal/testutil"
)

func sessionCookie(w interface{ Result() *http.Response }) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	return nil
}

func TestRegister(t *testing.T) {
	app := setupApp(t)
	testutil.CreateUser(t, app.db, "taken")

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantField  string
	}{
		{"valid", map[string]any{"username": "newbie", "password": "hunter22"}, http.StatusCreated, ""},
		{"duplicate username", map[string]any{"username": "taken", "password": "hunter22"}, http.StatusBadRequest, "username"},
		{"short password", map[string]any{"username": "shorty", "password": "abc"}, http.StatusBadRequest, "password"},
		{"missing username", map[string]any{"password": "hunter22"}, http.StatusBadRequest, "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/register", "", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			env := decode(t, w)
			require.NotNil(t, env.Flash)
			if tt.wantField != "" {
				assert.Equal(t, "failure", env.Flash.Status)
				assert.Contains(t, env.Flash.FieldErrors, tt.wantField)
				return
			}

			var auth models.AuthResponse
			require.NoError(t, json.Unmarshal(env.Data, &auth))
			assert.NotEmpty(t, auth.Token)
			assert.Equal(t, "newbie", auth.User.Username)
			assert.NotContains(t, string(env.Data), "hunter22")

			cookie := sessionCookie(w)
			require.NotNil(t, cookie)
			assert.Equal(t, auth.Token, cookie.Value)
			assert.True(t, cookie.HttpOnly)
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	app := setupApp(t)
	user := testutil.CreateUser(t, app.db, "alice")

	w := app.do(t, http.MethodPost, "/login", "", map[string]any{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/login", "", map[string]any{"username": "nobody", "password": "password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/login", "", map[string]any{"username": "alice", "password": "password"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var auth models.AuthResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &auth))
	assert.Equal(t, user.ID, auth.User.ID)

	w = app.do(t, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodGet, "/me", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &me))
	assert.Equal(t, "alice", me.User.Username)
}

func TestLogout(t *testing.T) {
	app := setupApp(t)
	user := testutil.CreateUser(t, app.db, "alice")

	w := app.do(t, http.MethodPost, "/logout", "", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "You must log in to do that", decode(t, w).Flash.Message)

	w = app.do(t, http.MethodPost, "/logout", app.login(t, user), nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	env := decode(t, w)
	require.NotNil(t, env.Flash)
	assert.Equal(t, "Successfully logged out", env.Flash.Message)

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}
