package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/media-ranker/backend/internal/models"
)

// WorkRepository handles work persistence
type WorkRepository interface {
	Create(ctx context.Context, work *models.Work) error
	FindByID(ctx context.Context, id int) (*models.Work, error)
	Update(ctx context.Context, work *models.Work) error
	Delete(ctx context.Context, id int) error
	TopByCategory(ctx context.Context, category models.Category, limit int) ([]models.Work, error)
	Best(ctx context.Context) (*models.Work, error)
	GroupByCategory(ctx context.Context) (map[models.Category][]models.Work, error)
	ListByUser(ctx context.Context, userID int) ([]models.Work, error)
	TitleTaken(ctx context.Context, category models.Category, title string, excludeID int) (bool, error)
}

type workRepository struct {
	db *gorm.DB
}

func NewWorkRepository(db *gorm.DB) WorkRepository {
	return &workRepository{db: db}
}

func (r *workRepository) Create(ctx context.Context, work *models.Work) error {
	if err := r.db.WithContext(ctx).Create(work).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateTitle
		}
		return fmt.Errorf("create work: %w", err)
	}
	return nil
}

// FindByID loads a work with its owner
func (r *workRepository) FindByID(ctx context.Context, id int) (*models.Work, error) {
	var work models.Work
	if err := r.db.WithContext(ctx).Preload("User").First(&work, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find work %d: %w", id, err)
	}
	return &work, nil
}

// Update saves the editable columns. vote_count is owned by the vote
// repository and is never written here.
func (r *workRepository) Update(ctx context.Context, work *models.Work) error {
	err := r.db.WithContext(ctx).Model(work).
		Select("Category", "Title", "Creator", "Description", "PublicationYear").
		Updates(work).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateTitle
		}
		return fmt.Errorf("update work %d: %w", work.ID, err)
	}
	return nil
}

// Delete removes a work together with its votes
func (r *workRepository) Delete(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("work_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return fmt.Errorf("delete votes of work %d: %w", id, err)
		}
		result := tx.Delete(&models.Work{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete work %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *workRepository) TopByCategory(ctx context.Context, category models.Category, limit int) ([]models.Work, error) {
	works := []models.Work{}
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("vote_count desc").Order("id asc").
		Limit(limit).
		Find(&works).Error
	if err != nil {
		return nil, fmt.Errorf("top %s: %w", category.Plural(), err)
	}
	return works, nil
}

// Best returns the work with the most votes, or nil when there are no works
func (r *workRepository) Best(ctx context.Context) (*models.Work, error) {
	var work models.Work
	err := r.db.WithContext(ctx).Preload("User").
		Order("vote_count desc").Order("id asc").
		First(&work).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("best work: %w", err)
	}
	return &work, nil
}

// GroupByCategory returns every work keyed by category. Each known category
// has a key, even when it has no works.
func (r *workRepository) GroupByCategory(ctx context.Context) (map[models.Category][]models.Work, error) {
	var works []models.Work
	err := r.db.WithContext(ctx).
		Order("vote_count desc").Order("id asc").
		Find(&works).Error
	if err != nil {
		return nil, fmt.Errorf("list works: %w", err)
	}

	grouped := make(map[models.Category][]models.Work, len(models.Categories))
	for _, category := range models.Categories {
		grouped[category] = []models.Work{}
	}
	for _, work := range works {
		grouped[work.Category] = append(grouped[work.Category], work)
	}
	return grouped, nil
}

func (r *workRepository) ListByUser(ctx context.Context, userID int) ([]models.Work, error) {
	works := []models.Work{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&works).Error
	if err != nil {
		return nil, fmt.Errorf("works of user %d: %w", userID, err)
	}
	return works, nil
}

// TitleTaken reports whether another work in category already uses title.
// Comparison ignores case.
func (r *workRepository) TitleTaken(ctx context.Context, category models.Category, title string, excludeID int) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Work{}).
		Where("category = ? AND LOWER(title) = LOWER(?)", category, title)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return count > 0, nil
}
