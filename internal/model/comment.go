package model

import (
	"errors"
	"time"
)

const MaxCommentLength = 2200

// Comment is a stored comment. ParentID is never null: a top-level comment's
// parent is the post itself, which keeps depth computation uniform. The likes
// set lives in comment_likes; LikesCount is the denormalized cardinality.
type Comment struct {
	ID         int64     `db:"id"`
	PostID     int64     `db:"post_id"`
	CreatorID  int64     `db:"creator_id"`
	ParentID   int64     `db:"parent_id"`
	Content    string    `db:"content"`
	Depth      int       `db:"depth"`
	LikesCount int       `db:"likes_count"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`

	// Joined, not comments columns.
	Creator *User   `db:"-"`
	Likes   []int64 `db:"-"`
}

// CommentView is the boundary projection of a comment.
type CommentView struct {
	ID         string   `json:"_id"`
	PostID     string   `json:"postId"`
	CreatorID  string   `json:"creatorId"`
	ParentID   string   `json:"parentId"`
	Content    string   `json:"content"`
	Depth      int      `json:"depth"`
	Likes      []string `json:"likes"`
	LikesCount int      `json:"likesCount"`
	CreatedAt  int64    `json:"createdAt"`
	UpdatedAt  int64    `json:"updatedAt"`
	Creator    *Creator `json:"creator,omitempty"`
}

func NewCommentView(c *Comment) CommentView {
	v := CommentView{
		ID:         IDString(c.ID),
		PostID:     IDString(c.PostID),
		CreatorID:  IDString(c.CreatorID),
		ParentID:   IDString(c.ParentID),
		Content:    c.Content,
		Depth:      c.Depth,
		Likes:      IDStrings(c.Likes),
		LikesCount: c.LikesCount,
		CreatedAt:  Millis(c.CreatedAt),
		UpdatedAt:  Millis(c.UpdatedAt),
		Creator:    NewCreator(c.Creator),
	}
	if v.Likes == nil {
		v.Likes = []string{}
	}
	return v
}

// CreateCommentRequest is the request body for commenting on a post.
// ParentID empty means top-level; the store substitutes the post's own id.
// Depth is always derived from the parent, never accepted from the client.
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,max=2200"`
	ParentID int64  `json:"parentId,string,omitempty"`
}

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrCommentNotLiked = errors.New("comment not liked")
	ErrParentMismatch  = errors.New("parent comment does not belong to this post")
)
