package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/model"
)

func TestUserService_Register_Success(t *testing.T) {
	repo := &mockUserRepository{}
	svc := NewUserService(repo)

	user, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "New.User@Example.COM",
		Username: "newuser",
		Password: "securepassword123",
		Position: "Engineer",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if user.Email != "new.user@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.PasswordHashed == "securepassword123" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte("securepassword123")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
	if !strings.Contains(user.ProfilePicture, "identicon") || !strings.Contains(user.ProfilePicture, "newuser") {
		t.Errorf("profile picture = %q, want generated identicon", user.ProfilePicture)
	}
	if user.Backdrop == "" {
		t.Error("expected a default backdrop color")
	}
	if user.PostsCount != 0 || user.FollowersCount != 0 {
		t.Error("counters must start at zero")
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepository{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc := NewUserService(repo)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "taken@example.com",
		Username: "whoever",
		Password: "securepassword123",
	})
	if !errors.Is(err, model.ErrEmailExists) {
		t.Fatalf("err = %v, want ErrEmailExists", err)
	}
	if len(repo.createCalls) != 0 {
		t.Error("Create must not be called for duplicate email")
	}
}

func TestUserService_Register_DuplicateUsername(t *testing.T) {
	repo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	svc := NewUserService(repo)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "fresh@example.com",
		Username: "taken",
		Password: "securepassword123",
	})
	if !errors.Is(err, model.ErrUsernameExists) {
		t.Fatalf("err = %v, want ErrUsernameExists", err)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("rightpassword"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	stored := &model.User{
		ID:             1,
		Email:          "user@example.com",
		Username:       "user",
		PasswordHashed: string(hash),
		CreatedAt:      time.Now(),
	}
	repo := &mockUserRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == "user@example.com" {
				return stored, nil
			}
			return nil, model.ErrUserNotFound
		},
	}
	svc := NewUserService(repo)

	t.Run("success with mixed-case email", func(t *testing.T) {
		user, err := svc.Authenticate(context.Background(), model.LoginRequest{
			Email:    "User@Example.Com",
			Password: "rightpassword",
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if user.ID != 1 {
			t.Errorf("user id = %d, want 1", user.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), model.LoginRequest{
			Email:    "user@example.com",
			Password: "wrongpassword",
		})
		if !errors.Is(err, model.ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), model.LoginRequest{
			Email:    "ghost@example.com",
			Password: "rightpassword",
		})
		if !errors.Is(err, model.ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("oldpassword1"), bcrypt.MinCost)

	var storedHash string
	repo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, PasswordHashed: string(hash)}, nil
		},
		updatePasswordFn: func(ctx context.Context, id int64, passwordHashed string) error {
			storedHash = passwordHashed
			return nil
		},
	}
	svc := NewUserService(repo)

	err := svc.ChangePassword(context.Background(), 1, model.ChangePasswordRequest{
		OldPassword: "oldpassword1",
		NewPassword: "newpassword1",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("newpassword1")); err != nil {
		t.Errorf("new hash does not verify: %v", err)
	}

	err = svc.ChangePassword(context.Background(), 1, model.ChangePasswordRequest{
		OldPassword: "notTheOldOne",
		NewPassword: "newpassword2",
	})
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials for wrong old password", err)
	}
}
