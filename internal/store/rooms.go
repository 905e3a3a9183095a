package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"studyhall/internal/domain"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrPINRequired  = errors.New("pin required")
	ErrBadPIN       = errors.New("invalid pin")
)

type Room struct {
	Code        domain.RoomCode
	Name        string
	Description string
	IsPrivate   bool
	Capacity    int
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Members     []RoomMember
}

type RoomMember struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// CapacityAndPrivacy is the narrow display-only view the chat core may
// consume. Capacity is enforced here at join-request time, never by the
// presence engine.
type CapacityAndPrivacy struct {
	Capacity  int  `json:"capacity"`
	IsPrivate bool `json:"isPrivate"`
}

// generateRoomCode draws a 6-8 digit numeric code not already in use.
func (p *Postgres) generateRoomCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 12; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(3))
		if err != nil {
			return "", err
		}
		length := 6 + int(n.Int64())
		var b strings.Builder
		for i := 0; i < length; i++ {
			d, err := rand.Int(rand.Reader, big.NewInt(10))
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%d", d.Int64())
		}
		code := b.String()
		var exists bool
		if err := p.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM rooms WHERE room_code = $1)`, code,
		).Scan(&exists); err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not generate unique room code")
}

// CreateRoom inserts a new room with the creator as its first member.
// Private rooms hash their PIN with bcrypt.
func (p *Postgres) CreateRoom(ctx context.Context, ownerID, name, description string, isPrivate bool, pin string, capacity int) (Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Room{}, errors.New("room name is required")
	}
	if capacity < domain.MinCapacity || capacity > domain.MaxCapacity {
		return Room{}, fmt.Errorf("capacity must be between %d and %d", domain.MinCapacity, domain.MaxCapacity)
	}
	if isPrivate && len(pin) < 4 {
		return Room{}, errors.New("private rooms require a pin of at least 4 characters")
	}

	code, err := p.generateRoomCode(ctx)
	if err != nil {
		return Room{}, err
	}

	var pinHash *string
	if isPrivate {
		h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return Room{}, err
		}
		s := string(h)
		pinHash = &s
	}

	row := p.pool.QueryRow(ctx, `
		INSERT INTO rooms (room_code, name, description, is_private, pin_hash, capacity, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING room_code, name, description, is_private, capacity, created_by, created_at, updated_at
	`, code, name, strings.TrimSpace(description), isPrivate, pinHash, capacity, ownerID)

	var r Room
	var codeStr string
	if err := row.Scan(&codeStr, &r.Name, &r.Description, &r.IsPrivate, &r.Capacity, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return Room{}, err
	}
	r.Code = domain.RoomCode(codeStr)

	if _, err := p.pool.Exec(ctx, `
		INSERT INTO room_members (room_code, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, codeStr, ownerID); err != nil {
		return Room{}, err
	}
	r.Members, err = p.roomMembers(ctx, codeStr)
	return r, err
}

// JoinRoom records durable membership. Existing members pass through
// idempotently and skip both PIN and capacity checks.
func (p *Postgres) JoinRoom(ctx context.Context, room domain.RoomCode, userID, pin string) (Room, error) {
	r, pinHash, err := p.getRoom(ctx, room)
	if err != nil {
		return Room{}, err
	}

	for _, m := range r.Members {
		if m.ID == userID {
			return r, nil
		}
	}

	if r.IsPrivate {
		if pin == "" {
			return Room{}, ErrPINRequired
		}
		if bcrypt.CompareHashAndPassword([]byte(pinHash), []byte(pin)) != nil {
			return Room{}, ErrBadPIN
		}
	}
	if len(r.Members) >= r.Capacity {
		return Room{}, ErrRoomFull
	}

	if _, err := p.pool.Exec(ctx, `
		INSERT INTO room_members (room_code, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, string(room), userID); err != nil {
		return Room{}, err
	}
	r.Members, err = p.roomMembers(ctx, string(room))
	return r, err
}

// LeaveRoom drops durable membership. Unknown members are a no-op.
func (p *Postgres) LeaveRoom(ctx context.Context, room domain.RoomCode, userID string) (Room, error) {
	if _, err := p.pool.Exec(ctx, `
		DELETE FROM room_members WHERE room_code = $1 AND user_id = $2
	`, string(room), userID); err != nil {
		return Room{}, err
	}
	r, _, err := p.getRoom(ctx, room)
	return r, err
}

// GetRoom fetches room metadata and its durable member list.
func (p *Postgres) GetRoom(ctx context.Context, room domain.RoomCode) (Room, error) {
	r, _, err := p.getRoom(ctx, room)
	return r, err
}

// GetCapacityAndPrivacy is the display-only view consumed by the core.
func (p *Postgres) GetCapacityAndPrivacy(ctx context.Context, room domain.RoomCode) (CapacityAndPrivacy, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT capacity, is_private FROM rooms WHERE room_code = $1`, string(room))
	var out CapacityAndPrivacy
	if err := row.Scan(&out.Capacity, &out.IsPrivate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CapacityAndPrivacy{}, ErrRoomNotFound
		}
		return CapacityAndPrivacy{}, err
	}
	return out, nil
}

// MyRooms lists rooms the user belongs to, newest first.
func (p *Postgres) MyRooms(ctx context.Context, userID string) ([]Room, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT r.room_code, r.name, r.description, r.is_private, r.capacity, r.created_by, r.created_at, r.updated_at
		FROM rooms r
		JOIN room_members m ON m.room_code = r.room_code
		WHERE m.user_id = $1
		ORDER BY r.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Room
	for rows.Next() {
		var r Room
		var code string
		if err := rows.Scan(&code, &r.Name, &r.Description, &r.IsPrivate, &r.Capacity, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		r.Code = domain.RoomCode(code)
		if r.Members, err = p.roomMembers(ctx, code); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) getRoom(ctx context.Context, room domain.RoomCode) (Room, string, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT room_code, name, description, is_private, COALESCE(pin_hash, ''), capacity, created_by, created_at, updated_at
		FROM rooms
		WHERE room_code = $1
	`, string(room))

	var r Room
	var code, pinHash string
	if err := row.Scan(&code, &r.Name, &r.Description, &r.IsPrivate, &pinHash, &r.Capacity, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Room{}, "", ErrRoomNotFound
		}
		return Room{}, "", err
	}
	r.Code = domain.RoomCode(code)

	members, err := p.roomMembers(ctx, code)
	if err != nil {
		return Room{}, "", err
	}
	r.Members = members
	return r, pinHash, nil
}

func (p *Postgres) roomMembers(ctx context.Context, code string) ([]RoomMember, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT u.id, u.username
		FROM room_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_code = $1
		ORDER BY m.joined_at
	`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RoomMember
	for rows.Next() {
		var m RoomMember
		if err := rows.Scan(&m.ID, &m.Username); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
