package dto

import "time"

// SendMessageRequest contenido de un mensaje directo.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// MessageResponse mensaje dentro de una conversación.
type MessageResponse struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// ConversationResponse mensajes con otro usuario, del más antiguo al más reciente.
type ConversationResponse struct {
	With     UserSummary       `json:"with"`
	Messages []MessageResponse `json:"messages"`
}

// UserSummary datos públicos del interlocutor.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}
