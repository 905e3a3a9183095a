package core

import (
	"errors"
	"sync"
	"testing"

	"studyhall/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	fail   bool
}

func (f *fakeConn) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send buffer full")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func session(uid, name string, conn SignalConnection) MemberSession {
	return NewMemberSession(domain.Identity{UserID: domain.UserID(uid), Username: name}, conn)
}

func TestChannel_EmitReachesEveryone(t *testing.T) {
	ch := NewChannel("123456")
	a, b := &fakeConn{}, &fakeConn{}
	ch.Add("c1", session("u1", "alice", a))
	ch.Add("c2", session("u2", "bob", b))

	res := ch.Emit(Frame(`{"type":"x"}`))
	if res.SentTo != 2 || len(res.Dropped) != 0 {
		t.Fatalf("Emit() = %+v, want SentTo=2 Dropped=0", res)
	}
	if a.count() != 1 || b.count() != 1 {
		t.Errorf("frames: a=%d b=%d, want 1 each", a.count(), b.count())
	}
}

func TestChannel_EmitExceptSkipsOne(t *testing.T) {
	ch := NewChannel("123456")
	a, b := &fakeConn{}, &fakeConn{}
	ch.Add("c1", session("u1", "alice", a))
	ch.Add("c2", session("u2", "bob", b))

	res := ch.EmitExcept(Frame(`{}`), "c1")
	if res.SentTo != 1 {
		t.Fatalf("EmitExcept() SentTo = %d, want 1", res.SentTo)
	}
	if a.count() != 0 {
		t.Error("excluded connection received the frame")
	}
	if b.count() != 1 {
		t.Error("other connection missed the frame")
	}
}

func TestChannel_SlowConnDoesNotBlockOthers(t *testing.T) {
	ch := NewChannel("123456")
	slow := &fakeConn{fail: true}
	ok := &fakeConn{}
	ch.Add("c1", session("u1", "alice", slow))
	ch.Add("c2", session("u2", "bob", ok))

	res := ch.Emit(Frame(`{}`))
	if res.SentTo != 1 {
		t.Errorf("Emit() SentTo = %d, want 1", res.SentTo)
	}
	if len(res.Dropped) != 1 || res.Dropped[0] != "c1" {
		t.Errorf("Emit() Dropped = %v, want [c1]", res.Dropped)
	}
	if ok.count() != 1 {
		t.Error("healthy connection missed delivery")
	}
}

func TestChannel_RemoveAndCount(t *testing.T) {
	ch := NewChannel("123456")
	ch.Add("c1", session("u1", "alice", &fakeConn{}))
	ch.Add("c2", session("u2", "bob", &fakeConn{}))
	if ch.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", ch.Count())
	}
	if _, ok := ch.Get("c2"); !ok {
		t.Error("Get() missed a present connection")
	}
	ch.Remove("c1")
	if _, ok := ch.Get("c1"); ok {
		t.Error("Get() found a removed connection")
	}
	if ch.Count() != 1 {
		t.Errorf("Count() after Remove = %d, want 1", ch.Count())
	}
	if res := ch.Emit(Frame(`{}`)); res.SentTo != 1 {
		t.Errorf("Emit() after Remove SentTo = %d, want 1", res.SentTo)
	}
}
