package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/media-ranker/backend/internal/models"
)

// VoteRepository handles vote persistence
type VoteRepository interface {
	Create(ctx context.Context, vote *models.Vote) error
	ListByWork(ctx context.Context, workID int) ([]models.Vote, error)
	ListByUser(ctx context.Context, userID int) ([]models.Vote, error)
	CountByWork(ctx context.Context, workID int) (int64, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// Create records the vote and bumps the work's vote_count in one transaction.
func (r *voteRepository) Create(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Vote{}).
			Where("user_id = ? AND work_id = ?", vote.UserID, vote.WorkID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check existing vote: %w", err)
		}
		if existing > 0 {
			return ErrDuplicateVote
		}

		if err := tx.Create(vote).Error; err != nil {
			switch {
			case errors.Is(err, gorm.ErrDuplicatedKey):
				return ErrDuplicateVote
			case errors.Is(err, gorm.ErrForeignKeyViolated):
				return ErrNotFound
			}
			return fmt.Errorf("create vote: %w", err)
		}

		result := tx.Model(&models.Work{}).
			Where("id = ?", vote.WorkID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1))
		if result.Error != nil {
			return fmt.Errorf("increment vote_count: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListByWork returns a work's votes, newest first, with voters preloaded
func (r *voteRepository) ListByWork(ctx context.Context, workID int) ([]models.Vote, error) {
	votes := []models.Vote{}
	err := r.db.WithContext(ctx).
		Where("work_id = ?", workID).
		Preload("User").
		Order("created_at desc").Order("id desc").
		Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("votes of work %d: %w", workID, err)
	}
	return votes, nil
}

// ListByUser returns a user's votes, newest first, with works preloaded
func (r *voteRepository) ListByUser(ctx context.Context, userID int) ([]models.Vote, error) {
	votes := []models.Vote{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Work").
		Order("created_at desc").Order("id desc").
		Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("votes of user %d: %w", userID, err)
	}
	return votes, nil
}

func (r *voteRepository) CountByWork(ctx context.Context, workID int) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Vote{}).Where("work_id = ?", workID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count votes of work %d: %w", workID, err)
	}
	return count, nil
}
