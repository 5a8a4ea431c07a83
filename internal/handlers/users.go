package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/media-ranker/backend/internal/repository"
	"github.com/emilythestrangee/media-ranker/backend/internal/respond"
)

type UserHandler struct {
	users repository.UserRepository
	works repository.WorkRepository
	votes repository.VoteRepository
	log   logrus.FieldLogger
}

func NewUserHandler(users repository.UserRepository, works repository.WorkRepository, votes repository.VoteRepository, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{users: users, works: works, votes: votes, log: log}
}

// GetUsers lists every user with how many votes they have cast
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	respond.Render(c, http.StatusOK, nil, gin.H{"users": users})
}

// GetUserProfile returns a user with their works and votes, newest first
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respond.Fail(c, http.StatusNotFound, "User not found")
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.Fail(c, http.StatusNotFound, "User not found")
			return
		}
		h.serverError(c, err)
		return
	}

	works, err := h.works.ListByUser(ctx, user.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	votes, err := h.votes.ListByUser(ctx, user.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}

	respond.Render(c, http.StatusOK, nil, gin.H{
		"user":  user,
		"works": works,
		"votes": votes,
	})
}

func (h *UserHandler) serverError(c *gin.Context, err error) {
	h.log.WithError(err).WithField("path", c.Request.URL.Path).Error("user request failed")
	respond.Fail(c, http.StatusInternalServerError, msgServerError)
}
