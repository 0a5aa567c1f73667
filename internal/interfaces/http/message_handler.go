package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/jhoicas/agrimarket-api/internal/application/messaging"
)

// MessageHandler conversaciones directas entre usuarios.
type MessageHandler struct {
	uc *messaging.MessageUseCase
}

// NewMessageHandler construye el handler.
func NewMessageHandler(uc *messaging.MessageUseCase) *MessageHandler {
	return &MessageHandler{uc: uc}
}

// Conversation godoc
// @Summary      Ver conversación
// @Description  Mensajes con el usuario indicado en ambos sentidos, del más antiguo al más reciente.
// @Tags         messages
// @Security     Bearer
// @Produce      json
// @Param        user_id  path  int  true  "ID del interlocutor"
// @Success      200  {object}  dto.ConversationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/messages/{user_id} [get]
func (h *MessageHandler) Conversation(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil || userID <= 0 {
		return badRequest(c, "INVALID_ID", "user_id debe ser un entero positivo")
	}
	out, err := h.uc.Conversation(c.UserContext(), GetActor(c), int64(userID))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Send godoc
// @Summary      Enviar mensaje
// @Tags         messages
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        user_id  path  int                      true  "ID del receptor"
// @Param        body     body  dto.SendMessageRequest  true  "Contenido"
// @Success      201  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/messages/{user_id} [post]
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil || userID <= 0 {
		return badRequest(c, "INVALID_ID", "user_id debe ser un entero positivo")
	}
	var in dto.SendMessageRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Send(c.UserContext(), GetActor(c), int64(userID), in.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
