package handlers

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/emilythestrangee/media-ranker/backend/internal/repository"
	"github.com/emilythestrangee/media-ranker/backend/internal/session"
	"github.com/emilythestrangee/media-ranker/backend/internal/works"
)

// Handler combines all handler types
type Handler struct {
	Auth  *AuthHandler
	Work  *WorkHandler
	User  *UserHandler
	Users repository.UserRepository
}

// Options carries what the handlers need beyond the database.
type Options struct {
	Sessions     session.Store
	Cookie       CookieConfig
	RankingLimit int
	Log          logrus.FieldLogger
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, opts Options) *Handler {
	users := repository.NewUserRepository(db)
	workRepo := repository.NewWorkRepository(db)
	votes := repository.NewVoteRepository(db)

	return &Handler{
		Auth:  NewAuthHandler(users, opts.Sessions, opts.Cookie, opts.Log),
		Work:  NewWorkHandler(works.NewService(workRepo, votes, opts.RankingLimit), opts.Log),
		User:  NewUserHandler(users, workRepo, votes, opts.Log),
		Users: users,
	}
}
