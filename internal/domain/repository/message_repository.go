package repository

import (
	"context"

	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
)

// MessageRepository define el puerto de persistencia para mensajes directos.
type MessageRepository interface {
	Create(ctx context.Context, msg *entity.Message) error
	// ListConversation mensajes entre a y b en ambos sentidos, del más antiguo al más reciente.
	ListConversation(ctx context.Context, a, b int64) ([]*entity.Message, error)
}
