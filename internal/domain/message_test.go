package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewUserMessage(t *testing.T) {
	alice := Identity{UserID: "u1", Username: "alice"}

	tests := []struct {
		name    string
		text    string
		want    string
		wantErr error
	}{
		{name: "plain", text: "hello", want: "hello"},
		{name: "trimmed", text: "  hello  ", want: "hello"},
		{name: "empty", text: "", wantErr: ErrMessageEmpty},
		{name: "whitespace only", text: "   \t\n", wantErr: ErrMessageEmpty},
		{name: "at limit", text: strings.Repeat("a", MaxMessageLen), want: strings.Repeat("a", MaxMessageLen)},
		{name: "over limit", text: strings.Repeat("a", MaxMessageLen+1), wantErr: ErrMessageTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewUserMessage("123456", alice, tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if m.Text != tt.want {
				t.Errorf("Text = %q, want %q", m.Text, tt.want)
			}
			if m.Author != "alice" || m.UserID != "u1" || m.Type != MessageUser {
				t.Errorf("attribution wrong: %+v", m)
			}
			if m.Timestamp.IsZero() {
				t.Error("timestamp not set")
			}
		})
	}
}

func TestNewSystemMessage(t *testing.T) {
	m := NewSystemMessage("123456", "alice joined the room")
	if m.Type != MessageSystem || m.Author != SystemAuthor {
		t.Errorf("system message misattributed: %+v", m)
	}
	if m.UserID != "" {
		t.Errorf("system message carries a user id: %q", m.UserID)
	}
}

func TestNewIdentity(t *testing.T) {
	if _, err := NewIdentity("u1", ""); !errors.Is(err, ErrUsernameEmpty) {
		t.Errorf("empty username: err = %v", err)
	}
	if _, err := NewIdentity("u1", strings.Repeat("x", MaxUsernameLen+1)); !errors.Is(err, ErrUsernameTooLong) {
		t.Errorf("overlong username: err = %v", err)
	}
	id, err := NewIdentity("u1", "alice")
	if err != nil || id.Username != "alice" {
		t.Errorf("NewIdentity() = %+v, %v", id, err)
	}
}

func TestParseRoomCode(t *testing.T) {
	for _, bad := range []string{"", "abc", strings.Repeat("1", 17)} {
		if _, err := ParseRoomCode(bad); err == nil {
			t.Errorf("ParseRoomCode(%q) accepted", bad)
		}
	}
	code, err := ParseRoomCode("123456")
	if err != nil || code != RoomCode("123456") {
		t.Errorf("ParseRoomCode(123456) = %q, %v", code, err)
	}
}
