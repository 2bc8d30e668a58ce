package handler

import (
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/pkg/serverutils"
	internalWS "ai-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type NotificationHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewNotificationHandler(hub *internalWS.Hub, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs upgrades the request and streams the user's pushes until the peer goes away.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	// 1. Token from the query (browsers) or the bearer header (tooling)
	tokenStr := serverutils.TokenFromRequest(c)
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token (Query 'token' or Header 'Authorization')"))
	}

	// 2. Same secret and claims as the REST middleware
	userId, err := serverutils.ParseToken(tokenStr)
	if err != nil {
		h.logger.Warn("NotificationHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	// 3. Upgrade
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("NotificationHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userId})
			internalWS.ServeWs(h.hub, conn, userId)
			h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"user_id": userId})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// Status reports whether the user has a push connection on this instance.
func (h *NotificationHandler) Status(c *fiber.Ctx) error {
	userId := serverutils.UserId(c)
	return c.JSON(serverutils.SuccessResponse("Success get notification status", fiber.Map{
		"connected": h.hub.Connected(userId),
	}))
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	notif := router.Group("/notification/v1")
	notif.Get("/ws", h.ServeWs)
	notif.Get("/status", serverutils.JwtMiddleware, h.Status)
}
