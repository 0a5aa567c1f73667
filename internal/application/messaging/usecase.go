// Package messaging mensajes directos entre usuarios (comprador ↔ vendedor).
package messaging

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/access"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
)

// MessageUseCase envío y lectura de conversaciones.
type MessageUseCase struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	now      func() time.Time
}

// NewMessageUseCase construye el caso de uso.
func NewMessageUseCase(users repository.UserRepository, messages repository.MessageRepository) *MessageUseCase {
	return &MessageUseCase{users: users, messages: messages, now: time.Now}
}

// Send guarda un mensaje del actor a receiverID. El contenido se recorta; vacío es ErrInvalidInput.
func (uc *MessageUseCase) Send(ctx context.Context, actor access.Actor, receiverID int64, content string) (*dto.MessageResponse, error) {
	if err := access.CanMessage(actor); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > entity.MaxMessageLength {
		return nil, domain.ErrInvalidInput
	}
	if receiverID == actor.UserID {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.receiver(ctx, receiverID); err != nil {
		return nil, err
	}
	msg := &entity.Message{
		SenderID:   actor.UserID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  uc.now(),
	}
	if err := uc.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	resp := toMessageResponse(msg)
	return &resp, nil
}

// Conversation mensajes entre el actor y otherID en ambos sentidos.
func (uc *MessageUseCase) Conversation(ctx context.Context, actor access.Actor, otherID int64) (*dto.ConversationResponse, error) {
	if err := access.CanMessage(actor); err != nil {
		return nil, err
	}
	other, err := uc.receiver(ctx, otherID)
	if err != nil {
		return nil, err
	}
	list, err := uc.messages.ListConversation(ctx, actor.UserID, otherID)
	if err != nil {
		return nil, err
	}
	out := &dto.ConversationResponse{
		With:     dto.UserSummary{ID: other.ID, Username: other.Username, Name: other.Name},
		Messages: make([]dto.MessageResponse, 0, len(list)),
	}
	for _, m := range list {
		out.Messages = append(out.Messages, toMessageResponse(m))
	}
	return out, nil
}

func (uc *MessageUseCase) receiver(ctx context.Context, id int64) (*entity.User, error) {
	if id <= 0 {
		return nil, domain.ErrNotFound
	}
	u, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func toMessageResponse(m *entity.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}
