package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post represents a piece of content published by a user.
// Comments holds comment ids in creation order; each one points back at this post.
type Post struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Image       string    `json:"image" gorm:"size:512"`
	AuthorID    uuid.UUID `json:"author_id" gorm:"type:char(36);not null;index"`
	Comments    IDList    `json:"comments"`
	Likes       IDList    `json:"likes"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PostDetail is a post with its author and comments resolved.
type PostDetail struct {
	Post
	Author        *UserSummary `json:"author,omitempty"`
	Thread        []Comment    `json:"thread"`
	LikesCount    int          `json:"likes_count"`
	CommentsCount int          `json:"comments_count"`
}
