package model

import "time"

const (
	ActivityPostCreated = "post.created"
	ActivityPostUpdated = "post.updated"
	ActivityPostDeleted = "post.deleted"
)

// Activity is an audit record of a post mutation. Rows are written
// asynchronously by the persist worker, never by request handlers.
type Activity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Action    string    `gorm:"size:32;not null;index" json:"action"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
