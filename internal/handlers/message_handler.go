package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/chat-app/services/dm-service/internal/middleware"
	"github.com/yourorg/chat-app/services/dm-service/internal/models"
	"github.com/yourorg/chat-app/services/dm-service/internal/repository"
	"github.com/yourorg/chat-app/services/dm-service/internal/service"
	"go.uber.org/zap"
)

type MessageHandler struct {
	svc *service.MessagingService
	log *zap.SugaredLogger
}

func NewMessageHandler(svc *service.MessagingService, log *zap.SugaredLogger) *MessageHandler {
	return &MessageHandler{svc: svc, log: log}
}

// Send handles POST /message/send/:id.
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	senderID, _ := c.Locals(middleware.UserIDKey).(string)
	receiverID := c.Params("id")

	var body struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	msg, err := h.svc.SendMessage(c.Context(), senderID, receiverID, body.Message)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message cannot be empty"})
		case errors.Is(err, service.ErrInvalidRecipient):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot message yourself"})
		case errors.Is(err, repository.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		default:
			h.log.Errorw("send message", "error", err, "sender", senderID, "receiver", receiverID)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// History handles GET /message/get/:id.
func (h *MessageHandler) History(c *fiber.Ctx) error {
	callerID, _ := c.Locals(middleware.UserIDKey).(string)
	otherID := c.Params("id")

	msgs, err := h.svc.GetHistory(c.Context(), callerID, otherID)
	if err != nil {
		h.log.Errorw("get history", "error", err, "caller", callerID, "other", otherID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	return c.JSON(fiber.Map{"messages": msgs})
}
