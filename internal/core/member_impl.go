package core

import "studyhall/internal/domain"

// memberSession implements MemberSession by pairing identity + transport.
type memberSession struct {
	id   domain.Identity
	conn SignalConnection
}

func NewMemberSession(id domain.Identity, conn SignalConnection) MemberSession {
	return &memberSession{id: id, conn: conn}
}

func (m *memberSession) Identity() domain.Identity { return m.id }
func (m *memberSession) Signal() SignalConnection  { return m.conn }
