package ws

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

type Server struct {
	hub *Hub
	log *zap.SugaredLogger
}

func NewServer(hub *Hub, log *zap.SugaredLogger) *Server {
	return &Server{hub: hub, log: log}
}

// UpgradeRequired gates the websocket route to actual upgrade requests.
func (s *Server) UpgradeRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Handler runs one connection: register, pump, deregister. The channel does
// no auth of its own; user_id is an optional hint used only for presence.
func (s *Server) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		c := newClient(conn, conn.Query("user_id"))
		s.hub.Register(c)
		go c.writePump()
		c.readPump(s.hub)
	})
}
