package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	ActorID    int64
	Action     string
	EntityType string
	EntityID   int64
	IP         string
	UserAgent  string
	Metadata   map[string]any
}

// Record is a stored entry joined with the actor's name.
type Record struct {
	ID         int64
	ActorName  string
	Action     string
	EntityType string
	EntityID   string
	CreatedAt  time.Time
}

type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// Write records an audit entry; failures are returned so callers can ignore if needed.
func (s *Store) Write(ctx context.Context, e Entry) error {
	if s == nil || s.Pool == nil {
		return nil
	}

	var metadata interface{}
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		metadata = json.RawMessage(raw)
	}

	_, err := s.Pool.Exec(ctx, `
INSERT INTO audit_logs (actor_id, action, entity_type, entity_id, ip, user_agent, metadata)
VALUES (NULLIF($1::bigint, 0), $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)
`, e.ActorID, e.Action, e.EntityType, strconv.FormatInt(e.EntityID, 10), e.IP, e.UserAgent, metadata)

	return err
}

func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.Pool.Query(ctx, `
SELECT a.id, COALESCE(u.name, 'system'), a.action, a.entity_type, COALESCE(a.entity_id, ''), a.created_at
FROM audit_logs a
LEFT JOIN users u ON u.id = a.actor_id
ORDER BY a.created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.ActorName, &r.Action, &r.EntityType, &r.EntityID, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
