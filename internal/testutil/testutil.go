package testutil

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/emilythestrangee/media-ranker/backend/internal/database"
	"github.com/emilythestrangee/media-ranker/backend/internal/models"
)

var dbCounter atomic.Int64

// Logger returns a logger that discards everything.
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// SetupTestDB opens a fresh, migrated in-memory database that lives until
// the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbCounter.Add(1))

	svc, err := database.Open(sqlite.Open(dsn), Logger())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	db := svc.GetDB()
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = svc.Close()
	})
	return db
}

// CreateUser inserts a user whose password is "password".
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{Username: username, Password: string(hash)}
	if err := db.WithContext(context.Background()).Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %q: %v", username, err)
	}
	return user
}

// CreateWork inserts a work owned by owner.
func CreateWork(t *testing.T, db *gorm.DB, owner *models.User, category models.Category, title string, votes int) *models.Work {
	t.Helper()

	work := &models.Work{
		Category:        category,
		Title:           title,
		Creator:         "Someone",
		Description:     "A " + string(category),
		PublicationYear: 2001,
		UserID:          owner.ID,
		VoteCount:       votes,
	}
	if err := db.Create(work).Error; err != nil {
		t.Fatalf("Failed to create work %q: %v", title, err)
	}
	return work
}

// CreateVote inserts a vote row and keeps the work's vote_count in step.
func CreateVote(t *testing.T, db *gorm.DB, user *models.User, work *models.Work) *models.Vote {
	t.Helper()

	vote := &models.Vote{UserID: user.ID, WorkID: work.ID}
	if err := db.Create(vote).Error; err != nil {
		t.Fatalf("Failed to create vote: %v", err)
	}
	if err := db.Model(&models.Work{}).Where("id = ?", work.ID).
		UpdateColumn("vote_count", gorm.Expr("vote_count + 1")).Error; err != nil {
		t.Fatalf("Failed to bump vote_count: %v", err)
	}
	return vote
}
