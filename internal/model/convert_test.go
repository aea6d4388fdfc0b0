package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestCreator_OmitsPrivateFields(t *testing.T) {
	now := time.Now()
	u := &User{
		ID:             7,
		Email:          "a@example.com",
		Username:       "author",
		PasswordHashed: "secret-hash",
		Interests:      []int64{1, 2},
		Status:         true,
		ReportReceived: 4,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	data, err := json.Marshal(NewCreator(u))
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, forbidden := range []string{"password", "secret-hash", "status", "interests", "reportReceived"} {
		if strings.Contains(out, forbidden) {
			t.Errorf("projection leaked %q: %s", forbidden, out)
		}
	}
	if !strings.Contains(out, `"_id":"7"`) {
		t.Errorf("id not stringified: %s", out)
	}
	if !strings.Contains(out, `"createdAt":`+strconv.FormatInt(Millis(now), 10)) {
		t.Errorf("createdAt not epoch millis: %s", out)
	}
}

func TestMillis(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 500_000_000, time.UTC)
	if got, want := Millis(ts), ts.UnixMilli(); got != want {
		t.Errorf("Millis = %d, want %d", got, want)
	}
}

func TestIDStrings(t *testing.T) {
	got := IDStrings([]int64{1, 42, 7})
	want := []string{"1", "42", "7"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := IDStrings(nil); len(got) != 0 {
		t.Errorf("IDStrings(nil) = %v, want empty", got)
	}
}
