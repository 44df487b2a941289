package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"sales-voice/internal/domain"
)

// MessageRepository define la capa durable del log de mensajes.
type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	ListRecentByRoom(ctx context.Context, roomID string, limit int) ([]domain.Message, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, room_id, text, speaker, sent_ts, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.RoomID,
		message.Text,
		message.Speaker,
		message.SentTS,
		message.ReceivedAt,
	)
	return err
}

// ListRecentByRoom devuelve los mensajes más recientes de la sala,
// ordenados por sent_ts descendente (el más nuevo primero).
func (r *PgMessageRepository) ListRecentByRoom(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	const query = `
		SELECT id, room_id, text, speaker, sent_ts, received_at
		FROM messages
		WHERE room_id = $1
		ORDER BY sent_ts DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		err = rows.Scan(
			&msg.ID,
			&msg.RoomID,
			&msg.Text,
			&msg.Speaker,
			&msg.SentTS,
			&msg.ReceivedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
