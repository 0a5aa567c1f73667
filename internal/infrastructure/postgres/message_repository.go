package postgres

import (
	"context"

	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
)

var _ repository.MessageRepository = (*MessageRepo)(nil)

// MessageRepo implementación de MessageRepository sobre PostgreSQL.
type MessageRepo struct {
	q Querier
}

// NewMessageRepository construye el adaptador de mensajes. Pasar pool o tx (Querier).
func NewMessageRepository(q Querier) *MessageRepo {
	return &MessageRepo{q: q}
}

// Create persiste el mensaje y asigna el ID generado. Un usuario inexistente devuelve ErrNotFound.
func (r *MessageRepo) Create(ctx context.Context, msg *entity.Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, msg.SenderID, msg.ReceiverID, msg.Content, msg.CreatedAt).Scan(&msg.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return wrapErr("insert message", err)
	}
	return nil
}

// ListConversation mensajes entre a y b en orden cronológico.
func (r *MessageRepo) ListConversation(ctx context.Context, a, b int64) ([]*entity.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, content, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, a, b)
	if err != nil {
		return nil, wrapErr("list messages", err)
	}
	defer rows.Close()
	var list []*entity.Message
	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt); err != nil {
			return nil, wrapErr("list messages", err)
		}
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list messages", err)
	}
	return list, nil
}
