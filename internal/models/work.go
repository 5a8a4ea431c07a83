package models

import "time"

// Category is the kind of media a Work represents.
type Category string

const (
	CategoryAlbum Category = "album"
	CategoryBook  Category = "book"
	CategoryMovie Category = "movie"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryAlbum, CategoryBook, CategoryMovie}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Plural returns the collection name used in views and rankings.
func (c Category) Plural() string {
	return string(c) + "s"
}

type Work struct {
	ID              int       `gorm:"primaryKey" json:"id"`
	Category        Category  `gorm:"type:varchar(16);not null;index" json:"category"`
	Title           string    `gorm:"not null" json:"title"`
	Creator         string    `json:"creator"`
	Description     string    `gorm:"type:text" json:"description"`
	PublicationYear int       `json:"publication_year,omitempty"`
	UserID          int       `gorm:"not null;index" json:"user_id"`
	User            *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	VoteCount       int       `gorm:"not null;default:0;index" json:"vote_count"`
	Votes           []Vote    `gorm:"foreignKey:WorkID" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OwnedBy reports whether userID is the work's owner.
func (w *Work) OwnedBy(userID int) bool {
	return w.UserID == userID
}
