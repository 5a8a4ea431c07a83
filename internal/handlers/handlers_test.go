package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emilythestrangee/media-ranker/backend/internal/middleware"
	"github.com/emilythestrangee/media-ranker/backend/internal/models"
	"github.com/emilythestrangee/media-ranker/backend/internal/session"
	"github.com/emilythestrangee/media-ranker/backend/internal/testutil"
)

const testCookie = "test_session"

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	db     *gorm.DB
	store  session.Store
	router *gin.Engine
}

type envelope struct {
	Flash *struct {
		Status      string              `json:"status"`
		Message     string              `json:"message"`
		FieldErrors map[string][]string `json:"field_errors"`
	} `json:"flash"`
	Redirect string          `json:"redirect"`
	Data     json.RawMessage `json:"data"`
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	store := session.NewJWTStore([]byte("test-secret"), time.Hour)
	h := NewHandler(db, Options{
		Sessions:     store,
		Cookie:       CookieConfig{Name: testCookie, TTL: time.Hour},
		RankingLimit: 10,
		Log:          testutil.Logger(),
	})

	r := gin.New()
	r.Use(middleware.Session(store, h.Users, testCookie, testutil.Logger()))
	r.POST("/register", h.Auth.Register)
	r.POST("/login", h.Auth.Login)
	r.POST("/logout", h.Auth.Logout)
	r.GET("/me", h.Auth.GetMe)
	r.GET("/", h.Work.Root)
	r.GET("/works", h.Work.Index)
	r.GET("/works/new", h.Work.New)
	r.POST("/works", h.Work.Create)
	r.GET("/works/:id", h.Work.Show)
	r.GET("/works/:id/edit", h.Work.Edit)
	r.PATCH("/works/:id", h.Work.Update)
	r.DELETE("/works/:id", h.Work.Destroy)
	r.POST("/works/:id/upvote", h.Work.Upvote)
	r.GET("/users", h.User.GetUsers)
	r.GET("/users/:id", h.User.GetUserProfile)

	return &testApp{db: db, store: store, router: r}
}

// login returns a bearer token for user.
func (a *testApp) login(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := a.store.Issue(context.Background(), user.ID)
	require.NoError(t, err)
	return token
}

func (a *testApp) do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) doForm(t *testing.T, method, path, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
