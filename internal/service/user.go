package service

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/model"
	"inkwell/internal/repository"
)

// Default backdrop palette for new accounts. A profile picture is generated
// from the username so every account renders without uploads.
var backdropColors = []string{
	"#FFB6C1", "#87CEEB", "#98FB98", "#FFD700",
	"#DDA0DD", "#F0E68C", "#FFA07A", "#B0C4DE",
}

// UserService handles account lifecycle and profile updates.
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register creates a new account. Email is normalized to lower case so
// lookups are case-insensitive; email and username uniqueness is checked
// upfront for clean errors and enforced again by the store's constraints.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	exists, err = s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:          email,
		Username:       username,
		PasswordHashed: string(hashed),
		ProfilePicture: identiconURL(username),
		Backdrop:       backdropColors[rand.Intn(len(backdropColors))],
		Position:       req.Position,
		Interests:      req.Interests,
		Status:         true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks email and password. Lookup and comparison failures both
// map to ErrInvalidCredentials so callers cannot probe which emails exist.
func (s *UserService) Authenticate(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// Update applies a partial profile update and returns the fresh user.
func (s *UserService) Update(ctx context.Context, id int64, patch model.UpdateUserRequest) (*model.User, error) {
	return s.repo.Update(ctx, id, patch)
}

// ChangePassword verifies the old password before storing the new hash.
func (s *UserService) ChangePassword(ctx context.Context, id int64, req model.ChangePasswordRequest) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.OldPassword)); err != nil {
		return model.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hashed))
}

func identiconURL(username string) string {
	return fmt.Sprintf("https://avatars.dicebear.com/api/identicon/%s.svg?size=120", url.PathEscape(username))
}
