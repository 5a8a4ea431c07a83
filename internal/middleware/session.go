package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/media-ranker/backend/internal/models"
	"github.com/emilythestrangee/media-ranker/backend/internal/repository"
	"github.com/emilythestrangee/media-ranker/backend/internal/session"
)

const (
	viewerKey = "viewer"
	tokenKey  = "session_token"
)

// Session resolves the request's session token to a user and stores it on
// the context. It never aborts: requests without a usable session continue
// as anonymous.
func Session(store session.Store, users repository.UserRepository, cookieName string, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := Token(c, cookieName)
		if token == "" {
			c.Next()
			return
		}
		c.Set(tokenKey, token)

		userID, err := store.Resolve(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrInvalidSession) {
				log.WithError(err).Warn("session lookup failed")
			}
			c.Next()
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.WithError(err).WithField("user_id", userID).Warn("session user lookup failed")
			}
			c.Next()
			return
		}

		c.Set(viewerKey, user)
		c.Next()
	}
}

// Token returns the bearer token, falling back to the session cookie.
func Token(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

// ViewerFrom returns the signed-in user, or nil for anonymous requests.
func ViewerFrom(c *gin.Context) *models.User {
	if v, ok := c.Get(viewerKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// TokenFrom returns the raw token the request presented, if any.
func TokenFrom(c *gin.Context) string {
	return c.GetString(tokenKey)
}
