package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/chat-app/services/dm-service/internal/handlers"
	"github.com/yourorg/chat-app/services/dm-service/internal/ws"
)

// Register wires the REST surface and the websocket channel. The websocket
// route sits outside the auth group: the channel trusts the transport.
func Register(app *fiber.App, h *handlers.MessageHandler, wsrv *ws.Server, auth fiber.Handler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	msg := app.Group("/message", auth)
	msg.Post("/send/:id", h.Send)
	msg.Get("/get/:id", h.History)

	app.Use("/ws", wsrv.UpgradeRequired())
	app.Get("/ws", wsrv.Handler())
}
