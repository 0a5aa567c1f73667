package entity

import "time"

// MaxMessageLength límite de caracteres del contenido de un mensaje.
const MaxMessageLength = 2000

// Message es un mensaje directo entre dos usuarios (p. ej. comprador y vendedor).
type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Content    string
	CreatedAt  time.Time
}
