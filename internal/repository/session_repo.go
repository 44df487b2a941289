package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sales-voice/internal/domain"
)

// SessionRepository define la persistencia de sesiones finalizadas.
// Upsert reemplaza el snapshot de la sala preservando su id durable.
type SessionRepository interface {
	Upsert(ctx context.Context, session domain.Session) (string, error)
	GetByRoomID(ctx context.Context, roomID string) (domain.Session, error)
	ListByOwner(ctx context.Context, ownerEmail string, limit int) ([]domain.SessionSummary, error)
}

type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

// Upsert inserta la sesión o, si la sala ya fue finalizada antes, reemplaza
// mensajes, conteo, análisis y timestamp en la fila existente. El owner solo
// se pisa cuando viene uno nuevo; el id durable nunca cambia.
func (r *PgSessionRepository) Upsert(ctx context.Context, session domain.Session) (string, error) {
	const query = `
		INSERT INTO sessions (id, room_id, owner_email, messages, total_messages, latest_analysis, finalized_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
		ON CONFLICT (room_id) DO UPDATE SET
			owner_email     = COALESCE(NULLIF(EXCLUDED.owner_email, ''), sessions.owner_email),
			messages        = EXCLUDED.messages,
			total_messages  = EXCLUDED.total_messages,
			latest_analysis = EXCLUDED.latest_analysis,
			finalized_at    = EXCLUDED.finalized_at
		RETURNING id
	`

	messagesJSON, err := json.Marshal(session.Messages)
	if err != nil {
		return "", err
	}
	var analysisJSON []byte
	if session.LatestAnalysis != nil {
		analysisJSON, err = json.Marshal(session.LatestAnalysis)
		if err != nil {
			return "", err
		}
	}

	var id string
	err = r.pool.QueryRow(ctx, query,
		session.ID,
		session.RoomID,
		session.OwnerEmail,
		messagesJSON,
		session.TotalMessages,
		analysisJSON,
		session.FinalizedAt,
	).Scan(&id)
	return id, err
}

func (r *PgSessionRepository) GetByRoomID(ctx context.Context, roomID string) (domain.Session, error) {
	const query = `
		SELECT id, room_id, COALESCE(owner_email, ''), messages, total_messages, latest_analysis, finalized_at
		FROM sessions
		WHERE room_id = $1
	`

	var (
		session      domain.Session
		messagesJSON []byte
		analysisJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, roomID).Scan(
		&session.ID,
		&session.RoomID,
		&session.OwnerEmail,
		&messagesJSON,
		&session.TotalMessages,
		&analysisJSON,
		&session.FinalizedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, err
	}
	if err != nil {
		return domain.Session{}, err
	}

	if len(messagesJSON) > 0 {
		if err := json.Unmarshal(messagesJSON, &session.Messages); err != nil {
			return domain.Session{}, err
		}
	}
	if len(analysisJSON) > 0 {
		var analysis domain.Analysis
		if err := json.Unmarshal(analysisJSON, &analysis); err != nil {
			return domain.Session{}, err
		}
		session.LatestAnalysis = &analysis
	}

	return session, nil
}

func (r *PgSessionRepository) ListByOwner(ctx context.Context, ownerEmail string, limit int) ([]domain.SessionSummary, error) {
	const query = `
		SELECT room_id, total_messages
		FROM sessions
		WHERE owner_email = $1
		ORDER BY finalized_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, ownerEmail, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.SessionSummary
	for rows.Next() {
		var s domain.SessionSummary
		if err := rows.Scan(&s.RoomID, &s.Count); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}
