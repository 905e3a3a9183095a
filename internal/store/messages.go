package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"studyhall/internal/domain"
)

// Append stores one message. Arrival order per room is the insertion
// sequence, so concurrent appenders stay deterministic.
func (p *Postgres) Append(ctx context.Context, m domain.Message) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO messages (room_code, author, user_id, body, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, string(m.RoomCode), m.Author, string(m.UserID), m.Text, m.Type, m.Timestamp)
	return err
}

// EnforceRetention deletes the oldest messages beyond limit, ordered by
// creation time with ties broken by insertion sequence. Re-running it is a
// no-op once the bound holds.
func (p *Postgres) EnforceRetention(ctx context.Context, room domain.RoomCode, limit int) error {
	_, err := p.pool.Exec(ctx, `
		DELETE FROM messages
		WHERE seq IN (
			SELECT seq FROM messages
			WHERE room_code = $1
			ORDER BY created_at DESC, seq DESC
			OFFSET $2
		)
	`, string(room), limit)
	return err
}

// FetchHistory returns up to limit of the most recent messages,
// oldest-first, optionally only those before a given timestamp for
// pagination.
func (p *Postgres) FetchHistory(ctx context.Context, room domain.RoomCode, limit int, before *time.Time) ([]domain.Message, error) {
	var rows pgx.Rows
	var err error
	if before != nil {
		rows, err = p.pool.Query(ctx, `
			SELECT room_code, author, user_id, body, kind, created_at
			FROM messages
			WHERE room_code = $1 AND created_at < $2
			ORDER BY created_at DESC, seq DESC
			LIMIT $3
		`, string(room), *before, limit)
	} else {
		rows, err = p.pool.Query(ctx, `
			SELECT room_code, author, user_id, body, kind, created_at
			FROM messages
			WHERE room_code = $1
			ORDER BY created_at DESC, seq DESC
			LIMIT $2
		`, string(room), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		var roomCode, userID string
		if err := rows.Scan(&roomCode, &m.Author, &userID, &m.Text, &m.Type, &m.Timestamp); err != nil {
			return nil, err
		}
		m.RoomCode = domain.RoomCode(roomCode)
		m.UserID = domain.UserID(userID)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query walks newest-first for the LIMIT; callers want oldest-first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
