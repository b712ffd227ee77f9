package models

import (
	"math"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Author is the public part of a User shown next to comments and replies.
type Author struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

// Comment is the model for the 'product_comments' table.
// ProductID points into the products, gifts or groceries id-space.
type Comment struct {
	ID        string    `json:"id" db:"id"`
	ProductID string    `json:"productId" db:"product_id"`
	UserID    string    `json:"userId" db:"user_id"`
	Text      string    `json:"text" db:"text"`
	Rating    int       `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Populated by the read queries
	User       *Author `json:"user,omitempty" db:"-"`
	LikeCount  int     `json:"likeCount" db:"-"`
	IsLiked    bool    `json:"isLiked" db:"-"`
	ReplyCount int     `json:"replyCount" db:"-"`
}

// Reply is the model for the 'comment_replies' table.
type Reply struct {
	ID        string    `json:"id" db:"id"`
	CommentID string    `json:"commentId" db:"comment_id"`
	UserID    string    `json:"userId" db:"user_id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	User      *Author `json:"user,omitempty" db:"-"`
	LikeCount int     `json:"likeCount" db:"-"`
	IsLiked   bool    `json:"isLiked" db:"-"`
}

// ValidRating reports whether r is an accepted star rating.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// AverageRating returns the mean rating rounded to one decimal place,
// or 0 when there are no comments.
func AverageRating(comments []Comment) float64 {
	if len(comments) == 0 {
		return 0
	}
	sum := 0
	for _, c := range comments {
		sum += c.Rating
	}
	avg := float64(sum) / float64(len(comments))
	return math.Round(avg*10) / 10
}
