package app

import (
	"testing"

	"studyhall/internal/domain"
)

func identity(uid, name string) domain.Identity {
	return domain.Identity{UserID: domain.UserID(uid), Username: name}
}

func TestRegistry_FirstJoinAndReconnect(t *testing.T) {
	r := NewRegistry()
	room := domain.RoomCode("123456")

	first, members := r.Join(room, identity("u1", "alice"), "c1")
	if !first {
		t.Error("Join() first join should report first=true")
	}
	if len(members) != 1 || !members[0].Online {
		t.Fatalf("Join() members = %+v, want one online member", members)
	}

	// Same connection joining again is a reconnect-overwrite, not a new
	// record.
	first, members = r.Join(room, identity("u1", "alice"), "c1")
	if first {
		t.Error("repeated Join() should report first=false")
	}
	if len(members) != 1 {
		t.Errorf("repeated Join() produced %d records, want 1", len(members))
	}
}

func TestRegistry_UniquenessAcrossConnections(t *testing.T) {
	r := NewRegistry()
	room := domain.RoomCode("123456")

	r.Join(room, identity("u1", "alice"), "c1")
	first, members := r.Join(room, identity("u1", "alice"), "c2")
	if first {
		t.Error("Join() from a new connection for a known user must not be a first join")
	}
	if len(members) != 1 {
		t.Fatalf("registry holds %d records for one (room,user), want 1", len(members))
	}
}

func TestRegistry_DisconnectRetainsOffline(t *testing.T) {
	r := NewRegistry()
	room := domain.RoomCode("123456")
	r.Join(room, identity("u1", "alice"), "c1")

	username, changed, members := r.Disconnect(room, "c1")
	if !changed || username != "alice" {
		t.Fatalf("Disconnect() = (%q, %v), want (alice, true)", username, changed)
	}
	if len(members) != 1 || members[0].Online {
		t.Fatalf("Disconnect() members = %+v, want one offline record retained", members)
	}

	// A second delivery finds no matching connection and is a no-op.
	_, changed, _ = r.Disconnect(room, "c1")
	if changed {
		t.Error("duplicate Disconnect() should be a no-op")
	}
}

func TestRegistry_ReconnectAfterDisconnect(t *testing.T) {
	r := NewRegistry()
	room := domain.RoomCode("123456")

	r.Join(room, identity("u1", "alice"), "c1")
	r.Disconnect(room, "c1")

	first, members := r.Join(room, identity("u1", "alice"), "c2")
	if first {
		t.Error("rejoin after disconnect must be a reconnect, not a first join")
	}
	if len(members) != 1 || !members[0].Online {
		t.Fatalf("rejoin members = %+v, want one online record", members)
	}
}

func TestRegistry_LeaveIsTerminal(t *testing.T) {
	r := NewRegistry()
	room := domain.RoomCode("123456")
	r.Join(room, identity("u1", "alice"), "c1")
	r.Join(room, identity("u2", "bob"), "c2")

	// Leave works for offline members too.
	r.Disconnect(room, "c2")
	username, removed, _ := r.Leave(room, "u2")
	if !removed || username != "bob" {
		t.Fatalf("Leave() = (%q, %v), want (bob, true)", username, removed)
	}
	for _, m := range r.ListMembers(room) {
		if m.UserID == "u2" {
			t.Error("Leave() left a record behind")
		}
	}

	_, removed, _ = r.Leave(room, "u2")
	if removed {
		t.Error("Leave() for a non-member should be a no-op")
	}
}

func TestRegistry_EmptyRoomGC(t *testing.T) {
	r := NewRegistry()
	room := domain.RoomCode("123456")
	r.Join(room, identity("u1", "alice"), "c1")
	r.Leave(room, "u1")

	if got := r.ListMembers(room); len(got) != 0 {
		t.Errorf("ListMembers() after last leave = %+v, want empty", got)
	}
	if stats := r.Stats(); len(stats) != 0 {
		t.Errorf("Stats() after last leave = %+v, want no rooms", stats)
	}
	// The lookup above must not have recreated a stale entry.
	if stats := r.Stats(); len(stats) != 0 {
		t.Errorf("ListMembers() recreated a room entry: %+v", stats)
	}
}

func TestRegistry_MemberOrderIsInsertionOrder(t *testing.T) {
	r := NewRegistry()
	room := domain.RoomCode("123456")
	r.Join(room, identity("u1", "alice"), "c1")
	r.Join(room, identity("u2", "bob"), "c2")
	r.Join(room, identity("u3", "carol"), "c3")
	r.Disconnect(room, "c2")
	r.Join(room, identity("u2", "bob"), "c4")

	got := r.ListMembers(room)
	want := []string{"alice", "bob", "carol"}
	if len(got) != len(want) {
		t.Fatalf("ListMembers() returned %d members, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Username != name {
			t.Errorf("ListMembers()[%d] = %q, want %q", i, got[i].Username, name)
		}
	}
}

func TestRegistry_RoomsOf(t *testing.T) {
	r := NewRegistry()
	r.Join("111111", identity("u1", "alice"), "c1")
	r.Join("222222", identity("u1", "alice"), "c1")
	r.Join("333333", identity("u2", "bob"), "c2")

	rooms := r.RoomsOf("c1")
	if len(rooms) != 2 {
		t.Fatalf("RoomsOf(c1) = %v, want 2 rooms", rooms)
	}
	if rooms := r.RoomsOf("nope"); len(rooms) != 0 {
		t.Errorf("RoomsOf(unknown) = %v, want none", rooms)
	}
}

func TestRegistry_Stats(t *testing.T) {
	r := NewRegistry()
	room := domain.RoomCode("123456")
	r.Join(room, identity("u1", "alice"), "c1")
	r.Join(room, identity("u2", "bob"), "c2")
	r.Disconnect(room, "c2")

	stats := r.Stats()
	s, ok := stats[room]
	if !ok {
		t.Fatalf("Stats() missing room %s", room)
	}
	if s.TotalMembers != 2 || s.OnlineMembers != 1 {
		t.Errorf("Stats() = total %d online %d, want 2/1", s.TotalMembers, s.OnlineMembers)
	}
}

func TestChannelManager_GetsertAndStop(t *testing.T) {
	m := NewChannelManager()
	room := domain.RoomCode("123456")

	ch := m.GetOrCreate(room)
	if ch == nil {
		t.Fatal("GetOrCreate() returned nil")
	}
	if again := m.GetOrCreate(room); again != ch {
		t.Error("GetOrCreate() must return the same channel for a room")
	}

	if _, ok := m.Get(room); !ok {
		t.Error("Get() should find an existing channel")
	}
	m.Stop(room)
	if _, ok := m.Get(room); ok {
		t.Error("Get() found a stopped channel")
	}
}
