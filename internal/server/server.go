package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/emilythestrangee/media-ranker/backend/internal/config"
	"github.com/emilythestrangee/media-ranker/backend/internal/database"
	"github.com/emilythestrangee/media-ranker/backend/internal/handlers"
	"github.com/emilythestrangee/media-ranker/backend/internal/middleware"
	"github.com/emilythestrangee/media-ranker/backend/internal/respond"
	"github.com/emilythestrangee/media-ranker/backend/internal/session"
)

type Server struct {
	cfg      *config.Config
	db       database.Service
	handler  *handlers.Handler
	sessions session.Store
	log      *logrus.Logger
}

// NewServer creates and configures a new server
func NewServer(cfg *config.Config, db database.Service, sessions session.Store, log *logrus.Logger) *http.Server {
	s := New(cfg, db, sessions, log)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  cfg.Server.IdleTimeout,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.WithField("port", cfg.Server.Port).Info("server configured")
	return server
}

// New builds the server state without binding a listener.
func New(cfg *config.Config, db database.Service, sessions session.Store, log *logrus.Logger) *Server {
	handler := handlers.NewHandler(db.GetDB(), handlers.Options{
		Sessions: sessions,
		Cookie: handlers.CookieConfig{
			Name:   cfg.Session.CookieName,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Server.GinMode == gin.ReleaseMode,
		},
		RankingLimit: cfg.Ranking.Limit,
		Log:          log,
	})

	return &Server{
		cfg:      cfg,
		db:       db,
		handler:  handler,
		sessions: sessions,
		log:      log,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(s.log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: !allowsAnyOrigin(s.cfg.Server.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.Session(s.sessions, s.handler.Users, s.cfg.Session.CookieName, s.log))

	r.GET("/health", func(c *gin.Context) {
		stats := s.db.Health()
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})

	// Session routes
	r.POST("/register", s.handler.Auth.Register)
	r.POST("/login", s.handler.Auth.Login)
	r.POST("/logout", s.handler.Auth.Logout)
	r.GET("/me", s.handler.Auth.GetMe)

	// Work routes; each handler applies its own session and owner checks
	r.GET("/", s.handler.Work.Root)
	works := r.Group("/works")
	{
		works.GET("", s.handler.Work.Index)
		works.GET("/new", s.handler.Work.New)
		works.POST("", s.handler.Work.Create)
		works.GET("/:id", s.handler.Work.Show)
		works.GET("/:id/edit", s.handler.Work.Edit)
		works.PATCH("/:id", s.handler.Work.Update)
		works.DELETE("/:id", s.handler.Work.Destroy)

		limiter := middleware.NewClientRateLimiter(
			rate.Limit(float64(s.cfg.RateLimit.UpvotesPerMinute)/60),
			s.cfg.RateLimit.Burst,
		)
		// Upvote always redirects, including when the client is throttled.
		back := func(c *gin.Context) string {
			return respond.Back(c.Request, "/works/"+c.Param("id"))
		}
		works.POST("/:id/upvote", middleware.RateLimitRedirect(limiter, back), s.handler.Work.Upvote)
	}

	// User routes (public reads)
	r.GET("/users", s.handler.User.GetUsers)
	r.GET("/users/:id", s.handler.User.GetUserProfile)

	return r
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
