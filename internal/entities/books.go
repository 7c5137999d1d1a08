package entities

import "time"

type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Author    string    `gorm:"index;size:255;not null" json:"author"`
	Genre     *string   `gorm:"index;size:100" json:"genre"`
	CreatedBy uint      `gorm:"not null;index" json:"created_by"`
	Creator   User      `gorm:"foreignKey:CreatedBy;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (Book) TableName() string {
	return "books"
}

// Review is a single user's rating of a book. A user holds at most one
// review per book; the composite unique index enforces it.
type Review struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BookID      uint      `gorm:"not null;uniqueIndex:idx_reviews_book_user" json:"book_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_reviews_book_user;index" json:"user_id"`
	Rating      int       `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Description *string   `gorm:"type:text" json:"description"`
	Book        Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}

const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether r is an allowed star rating.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
