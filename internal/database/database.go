package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/media-ranker/backend/internal/config"
	"github.com/emilythestrangee/media-ranker/backend/internal/models"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error
	GetDB() *gorm.DB
}

type service struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// New connects to postgres using cfg and migrates the schema.
func New(cfg config.DatabaseConfig, log *logrus.Logger) (Service, error) {
	logConnect(cfg, log)
	return Open(postgres.Open(cfg.DSN()), log)
}

// Dial connects to postgres using cfg without touching the schema.
func Dial(cfg config.DatabaseConfig, log *logrus.Logger) (Service, error) {
	logConnect(cfg, log)
	return Connect(postgres.Open(cfg.DSN()), log)
}

func logConnect(cfg config.DatabaseConfig, log *logrus.Logger) {
	log.WithFields(logrus.Fields{
		"host": cfg.Host,
		"port": cfg.Port,
		"name": cfg.Name,
	}).Info("connecting to database")
}

// Open connects through any gorm dialector and migrates the schema.
func Open(dialector gorm.Dialector, log *logrus.Logger) (Service, error) {
	svc, err := Connect(dialector, log)
	if err != nil {
		return nil, err
	}

	if err := Migrate(svc.GetDB()); err != nil {
		_ = svc.Close()
		return nil, err
	}
	log.Info("database migrations completed")
	return svc, nil
}

// Connect opens a connection through any gorm dialector and configures the
// connection pool.
func Connect(dialector gorm.Dialector, log *logrus.Logger) (Service, error) {
	gormLogger := logger.New(
		log,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(log.GetLevel()),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &service{db: db, log: log}, nil
}

// Migrate creates or updates every table the application uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Work{},
		&models.Vote{},
	); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}

	// Titles are unique per category regardless of case.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_works_category_title ON works (category, LOWER(title))",
	).Error; err != nil {
		return fmt.Errorf("error creating title index: %w", err)
	}
	return nil
}

// Drop removes every application table, votes first.
func Drop(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Vote{}, &models.Work{}, &models.User{})
}

func gormLogLevel(level logrus.Level) logger.LogLevel {
	switch {
	case level >= logrus.DebugLevel:
		return logger.Info
	case level >= logrus.WarnLevel:
		return logger.Warn
	default:
		return logger.Error
	}
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

// Health checks the health of the database connection by pinging the database.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats := make(map[string]string)

	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db error: %v", err)
		return stats
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := sqlDB.Stats()
	stats["open_connections"] = fmt.Sprintf("%d", dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", dbStats.InUse)
	stats["idle"] = fmt.Sprintf("%d", dbStats.Idle)

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	s.log.Info("disconnected from database")
	return sqlDB.Close()
}
