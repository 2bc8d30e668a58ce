package controller

import (
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	GetState(ctx *fiber.Ctx) error
	SetMode(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	NewConversation(ctx *fiber.Ctx) error
	StartLive(ctx *fiber.Ctx) error
	StopLive(ctx *fiber.Ctx) error
	SetActiveDocument(ctx *fiber.Ctx) error
}

type assistantController struct {
	service service.IAssistantService
}

func NewAssistantController(service service.IAssistantService) IAssistantController {
	return &assistantController{service: service}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("state", c.GetState)
	h.Put("mode", c.SetMode)
	h.Post("messages", c.SendMessage)
	h.Post("conversations", c.NewConversation)
	h.Post("live/start", c.StartLive)
	h.Post("live/stop", c.StopLive)
	h.Put("documents/active", c.SetActiveDocument)
}

func (c *assistantController) GetState(ctx *fiber.Ctx) error {
	res, err := c.service.GetState(ctx.UserContext(), serverutils.UserId(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get assistant state", res))
}

func (c *assistantController) SetMode(ctx *fiber.Ctx) error {
	var req dto.SetModeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SetMode(ctx.UserContext(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set interaction mode", res))
}

// SendMessage blocks until the turn finishes; progress is also pushed over the socket.
func (c *assistantController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *assistantController) NewConversation(ctx *fiber.Ctx) error {
	res, err := c.service.NewConversation(ctx.UserContext(), serverutils.UserId(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start new conversation", res))
}

func (c *assistantController) StartLive(ctx *fiber.Ctx) error {
	if err := c.service.StartLive(ctx.UserContext(), serverutils.UserId(ctx)); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success start live session", nil))
}

func (c *assistantController) StopLive(ctx *fiber.Ctx) error {
	if err := c.service.StopLive(ctx.UserContext(), serverutils.UserId(ctx)); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success stop live session", nil))
}

func (c *assistantController) SetActiveDocument(ctx *fiber.Ctx) error {
	var req dto.SetActiveDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.service.SetActiveDocument(ctx.UserContext(), serverutils.UserId(ctx), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success set active document", nil))
}
