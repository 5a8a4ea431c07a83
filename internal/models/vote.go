package models

import "time"

// Vote model - one user's upvote on one work
type Vote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_votes_user_work" json:"user_id"`
	WorkID    int       `gorm:"not null;uniqueIndex:idx_votes_user_work;index" json:"work_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Work      *Work     `gorm:"foreignKey:WorkID" json:"work,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
