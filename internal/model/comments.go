package model

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	IssueID    uuid.UUID  `json:"issue_id"`
	ParentID   *uuid.UUID `json:"parent_id,omitempty"`
	ReplyTo    *uuid.UUID `json:"reply_to,omitempty"`
	Content    string     `json:"content"`
	LikesCount int        `json:"likes_count"`
	IsEdited   bool       `json:"is_edited"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type CreateCommentRequest struct {
	Content  string     `json:"content" validate:"required"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	ReplyTo  *uuid.UUID `json:"reply_to,omitempty"`
}
