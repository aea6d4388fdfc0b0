package validate

import (
	"strings"
	"testing"

	"inkwell/internal/model"
)

func TestStruct_FieldKeyedMessages(t *testing.T) {
	err := Struct(model.CreatePostRequest{
		Title:   "short",
		Content: "also",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	fields, ok := AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected FieldErrors, got %T", err)
	}

	// Keys follow the json tag names, not Go field names.
	if _, ok := fields["title"]; !ok {
		t.Errorf("missing 'title' key: %v", fields)
	}
	if _, ok := fields["content"]; !ok {
		t.Errorf("missing 'content' key: %v", fields)
	}
	if _, ok := fields["topic"]; !ok {
		t.Errorf("missing 'topic' key for absent topics: %v", fields)
	}

	if msg := fields["title"]; !strings.Contains(msg, "at least 8 characters") {
		t.Errorf("title message = %q, want length hint", msg)
	}
}

func TestStruct_ValidRequestPasses(t *testing.T) {
	err := Struct(model.CreatePostRequest{
		Title:   "A perfectly fine title",
		Content: "Content long enough to pass the lower bound.",
		Topics:  []model.TopicDescriptor{{Value: "go", Label: "Go"}},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestStruct_EmailAndRequired(t *testing.T) {
	err := Struct(model.RegisterRequest{
		Email:    "not-an-email",
		Username: "ab",
	})
	fields, ok := AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected FieldErrors, got %v", err)
	}

	if msg := fields["email"]; !strings.Contains(msg, "valid email") {
		t.Errorf("email message = %q", msg)
	}
	if msg := fields["username"]; !strings.Contains(msg, "at least 3") {
		t.Errorf("username message = %q", msg)
	}
	if msg := fields["password"]; !strings.Contains(msg, "not allowed to be empty") {
		t.Errorf("password message = %q", msg)
	}
}
