package auth

import (
	"strings"
	"testing"
	"time"

	"studyhall/internal/domain"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	j := New("test-secret")
	want := domain.Identity{UserID: "u1", Username: "alice"}

	tok, err := j.Sign(want, time.Minute)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	got, err := j.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if got != want {
		t.Errorf("Verify() = %+v, want %+v", got, want)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	j := New("test-secret")
	id := domain.Identity{UserID: "u1", Username: "alice"}

	expired, err := j.Sign(id, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	foreign, err := New("other-secret").Sign(id, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	for name, tok := range map[string]string{
		"garbage":      "not.a.token",
		"expired":      expired,
		"wrong secret": foreign,
	} {
		if _, err := j.Verify(tok); err == nil {
			t.Errorf("Verify(%s) accepted the token", name)
		}
	}
}

func TestSignRequiresUserID(t *testing.T) {
	j := New("test-secret")
	if _, err := j.Sign(domain.Identity{Username: "alice"}, time.Minute); err == nil {
		t.Error("Sign() accepted an empty user id")
	}
}

func TestBind(t *testing.T) {
	j := New("test-secret")
	tok, err := j.Sign(domain.Identity{UserID: "u1", Username: "alice"}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("valid token wins over display name", func(t *testing.T) {
		id, err := j.Bind(tok, "ignored", "c1")
		if err != nil {
			t.Fatal(err)
		}
		if id.UserID != "u1" || id.Username != "alice" {
			t.Errorf("Bind() = %+v", id)
		}
	})

	t.Run("bad token fails the handshake", func(t *testing.T) {
		if _, err := j.Bind("not.a.token", "alice", "c1"); err == nil {
			t.Error("Bind() fell back to guest despite a presented credential")
		}
	})

	t.Run("no token makes a guest keyed by the connection", func(t *testing.T) {
		id, err := j.Bind("", "carol", "c1")
		if err != nil {
			t.Fatal(err)
		}
		if id.UserID != "c1" || id.Username != "carol" {
			t.Errorf("Bind() = %+v", id)
		}
	})

	t.Run("no token and no name defaults the username", func(t *testing.T) {
		id, err := j.Bind("", "", "c2")
		if err != nil {
			t.Fatal(err)
		}
		if id.Username != domain.GuestUsername {
			t.Errorf("guest username = %q", id.Username)
		}
	})

	t.Run("overlong display name is rejected", func(t *testing.T) {
		if _, err := j.Bind("", strings.Repeat("x", domain.MaxUsernameLen+1), "c3"); err == nil {
			t.Error("Bind() accepted an overlong display name")
		}
	})
}
