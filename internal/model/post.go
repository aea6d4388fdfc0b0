package model

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// Feed query defaults and the randomized sampling window.
const (
	DefaultListLimit = 1000
	RandomWindow     = 4
)

// Post validation bounds.
const (
	MinTitleLength   = 8
	MaxTitleLength   = 255
	MinContentLength = 8
	MaxContentLength = 10000
)

// Post is the stored post document. Topics holds the resolved topic ids in
// the order the author listed them.
type Post struct {
	ID             int64         `db:"id"`
	CreatorID      int64         `db:"creator_id"`
	Title          string        `db:"title"`
	Content        string        `db:"content"`
	Cover          *string       `db:"cover"`
	Topics         pq.Int64Array `db:"topics"`
	ReadingTime    int           `db:"reading_time"`
	Published      bool          `db:"published"`
	LikesCount     int           `db:"likes_count"`
	CommentsCount  int           `db:"comments_count"`
	BookmarksCount int           `db:"bookmarks_count"`
	TotalViews     int           `db:"total_views"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`

	// Joined, not a posts column.
	Creator *User `db:"-"`
}

// PostFilter selects posts for the feed queries. Zero values mean "no filter".
// When Random is set, pagination is overridden by windowed random sampling.
type PostFilter struct {
	By         int64
	Topic      int64
	TitleMatch string
	ExcludeID  int64
	Limit      int
	Skip       int
	Random     bool
}

// PostView is the list projection: creator/topics/likes/bookmarks hydrated,
// content excluded (only the detail view carries content).
type PostView struct {
	ID             string      `json:"_id"`
	CreatorID      string      `json:"creatorId"`
	Title          string      `json:"title"`
	Cover          *string     `json:"cover,omitempty"`
	ReadingTime    int         `json:"readingTime"`
	Published      bool        `json:"published"`
	LikesCount     int         `json:"likesCount"`
	CommentsCount  int         `json:"commentsCount"`
	BookmarksCount int         `json:"bookmarksCount"`
	TotalViews     int         `json:"totalViews"`
	CreatedAt      int64       `json:"createdAt"`
	UpdatedAt      int64       `json:"updatedAt"`
	Creator        *Creator    `json:"creator,omitempty"`
	Topics         []TopicView `json:"topics,omitempty"`
	Likes          []string    `json:"likes"`
	Bookmarks      []string    `json:"bookmarks"`
}

// PostDetail is the full projection returned by the detail endpoint.
type PostDetail struct {
	PostView
	Content      string `json:"content"`
	IsLiked      bool   `json:"isLiked"`
	IsBookmarked bool   `json:"isBookmarked"`
}

// NewPostView builds the list projection for a post. topics, likes and
// bookmarks are the hydrated join results; likes/bookmarks are never nil in
// the output so clients always see arrays.
func NewPostView(p *Post, topics []TopicView, likes, bookmarks []int64) PostView {
	v := PostView{
		ID:             IDString(p.ID),
		CreatorID:      IDString(p.CreatorID),
		Title:          p.Title,
		Cover:          p.Cover,
		ReadingTime:    p.ReadingTime,
		Published:      p.Published,
		LikesCount:     p.LikesCount,
		CommentsCount:  p.CommentsCount,
		BookmarksCount: p.BookmarksCount,
		TotalViews:     p.TotalViews,
		CreatedAt:      Millis(p.CreatedAt),
		UpdatedAt:      Millis(p.UpdatedAt),
		Creator:        NewCreator(p.Creator),
		Topics:         topics,
		Likes:          IDStrings(likes),
		Bookmarks:      IDStrings(bookmarks),
	}
	if v.Likes == nil {
		v.Likes = []string{}
	}
	if v.Bookmarks == nil {
		v.Bookmarks = []string{}
	}
	return v
}

// NewPostDetail builds the detail projection, including content.
func NewPostDetail(p *Post, topics []TopicView, likes, bookmarks []int64) *PostDetail {
	return &PostDetail{
		PostView: NewPostView(p, topics, likes, bookmarks),
		Content:  p.Content,
	}
}

// CreatePostRequest is the request body for publishing a post.
type CreatePostRequest struct {
	Title       string            `json:"title" validate:"required,min=8,max=255"`
	Content     string            `json:"content" validate:"required,min=8,max=10000"`
	Topics      []TopicDescriptor `json:"topic" validate:"required,min=1"`
	Cover       *string           `json:"cover"`
	ReadingTime int               `json:"readingTime"`
	Published   bool              `json:"published"`
}

// UpdatePostRequest is a partial post update. Nil fields are left untouched.
type UpdatePostRequest struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	Cover       *string `json:"cover"`
	ReadingTime *int    `json:"readingTime"`
	Published   *bool   `json:"published"`
	TotalViews  *int    `json:"totalViews"`
}

var (
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("not the resource owner")
)
