package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/emilythestrangee/media-ranker/backend/internal/middleware"
	"github.com/emilythestrangee/media-ranker/backend/internal/models"
	"github.com/emilythestrangee/media-ranker/backend/internal/repository"
	"github.com/emilythestrangee/media-ranker/backend/internal/respond"
	"github.com/emilythestrangee/media-ranker/backend/internal/session"
)

// CookieConfig controls the session cookie set on login.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type AuthHandler struct {
	users  repository.UserRepository
	store  session.Store
	cookie CookieConfig
	log    logrus.FieldLogger
}

func NewAuthHandler(users repository.UserRepository, store session.Store, cookie CookieConfig, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{users: users, store: store, cookie: cookie, log: log}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if err := c.ShouldBind(&input); err != nil {
		respond.Render(c, http.StatusBadRequest, respond.Failure("Could not register", bindingErrors(c, err)), nil)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		h.serverError(c, err)
		return
	}

	user := models.User{
		Username: input.Username,
		Password: string(hashedPassword),
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			respond.Render(c, http.StatusBadRequest, respond.Failure("Could not register",
				map[string][]string{"username": {"has already been taken"}}), nil)
			return
		}
		h.serverError(c, err)
		return
	}

	h.startSession(c, http.StatusCreated, &user, "Successfully created new user "+user.Username)
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBind(&input); err != nil {
		respond.Render(c, http.StatusBadRequest, respond.Failure("Could not log in", bindingErrors(c, err)), nil)
		return
	}

	user, err := h.users.FindByUsername(c.Request.Context(), input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.Fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.serverError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		respond.Fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.startSession(c, http.StatusOK, user, "Successfully logged in as existing user "+user.Username)
}

// Logout revokes the current session and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if middleware.ViewerFrom(c) == nil {
		respond.Redirect(c, "/", respond.Failure(msgLoginRequired, nil))
		return
	}

	if err := h.store.Revoke(c.Request.Context(), middleware.TokenFrom(c)); err != nil {
		h.log.WithError(err).Warn("session revoke failed")
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)

	respond.Redirect(c, "/", respond.Success("Successfully logged out"))
}

// GetMe returns the current authenticated user
func (h *AuthHandler) GetMe(c *gin.Context) {
	user := middleware.ViewerFrom(c)
	if user == nil {
		respond.Fail(c, http.StatusUnauthorized, msgLoginRequired)
		return
	}
	respond.Render(c, http.StatusOK, nil, gin.H{"user": user})
}

func (h *AuthHandler) startSession(c *gin.Context, status int, user *models.User, message string) {
	token, err := h.store.Issue(c.Request.Context(), user.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.cookie.TTL.Seconds()), "/", "", h.cookie.Secure, true)

	respond.Render(c, status, respond.Success(message), models.AuthResponse{
		Token:   token,
		User:    *user,
		Message: message,
	})
}

func (h *AuthHandler) serverError(c *gin.Context, err error) {
	h.log.WithError(err).WithField("path", c.Request.URL.Path).Error("auth request failed")
	respond.Fail(c, http.StatusInternalServerError, msgServerError)
}
