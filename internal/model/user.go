package model

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// User is the stored user document. PasswordHashed, Status, Interests and
// ReportReceived never cross the API boundary: outgoing user data always goes
// through the Creator projection, which has no such fields.
type User struct {
	ID             int64         `db:"id"`
	Email          string        `db:"email"`
	Username       string        `db:"username"`
	PasswordHashed string        `db:"password_hashed"`
	ProfilePicture string        `db:"profile_picture"`
	Bio            string        `db:"bio"`
	Location       string        `db:"location"`
	Position       string        `db:"position"`
	Skills         string        `db:"skills"`
	Backdrop       string        `db:"backdrop"`
	Interests      pq.Int64Array `db:"interests"`
	PostsCount     int           `db:"posts_count"`
	BookmarksCount int           `db:"bookmarks_count"`
	FollowersCount int           `db:"followers_count"`
	FollowingCount int           `db:"following_count"`
	Status         bool          `db:"status"`
	ReportReceived int           `db:"report_received"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

// Creator is the client-safe projection of a user, embedded wherever a
// creator sub-document appears (posts, comments, notifications). The stripped
// fields (password, status, interests, reportReceived) do not exist on this
// type, so the projection rule holds on every nesting path.
type Creator struct {
	ID             string `json:"_id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	Position       string `json:"position"`
	Skills         string `json:"skills"`
	Backdrop       string `json:"backdrop"`
	PostsCount     int    `json:"postsCount"`
	BookmarksCount int    `json:"bookmarksCount"`
	FollowersCount int    `json:"followersCount"`
	FollowingCount int    `json:"followingCount"`
	CreatedAt      int64  `json:"createdAt"`
	UpdatedAt      int64  `json:"updatedAt"`
}

// NewCreator converts a stored user to its boundary projection.
func NewCreator(u *User) *Creator {
	if u == nil {
		return nil
	}
	return &Creator{
		ID:             IDString(u.ID),
		Email:          u.Email,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		Bio:            u.Bio,
		Location:       u.Location,
		Position:       u.Position,
		Skills:         u.Skills,
		Backdrop:       u.Backdrop,
		PostsCount:     u.PostsCount,
		BookmarksCount: u.BookmarksCount,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		CreatedAt:      Millis(u.CreatedAt),
		UpdatedAt:      Millis(u.UpdatedAt),
	}
}

// RegisterRequest is the request body for creating an account.
type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Username  string  `json:"username" validate:"required,min=3,max=30"`
	Password  string  `json:"password" validate:"required,min=8"`
	Position  string  `json:"position"`
	Interests []int64 `json:"interests"`
}

// LoginRequest is the request body for authenticating.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest is a partial settings update. Nil fields are left untouched.
type UpdateUserRequest struct {
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
	Position       *string `json:"position"`
	Skills         *string `json:"skills"`
	Backdrop       *string `json:"backdrop"`
	ProfilePicture *string `json:"profilePicture"`
}

// ChangePasswordRequest is the request body for changing a password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
