package controller

import (
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IReminderController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Dismiss(ctx *fiber.Ctx) error
}

type reminderController struct {
	service service.IReminderService
}

func NewReminderController(service service.IReminderService) IReminderController {
	return &reminderController{service: service}
}

func (c *reminderController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/reminder/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Delete(":id", c.Dismiss)
}

func (c *reminderController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.Context(), serverutils.UserId(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get active reminders", res))
}

func (c *reminderController) Dismiss(ctx *fiber.Ctx) error {
	if err := c.service.Dismiss(ctx.Context(), serverutils.UserId(ctx), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success dismiss reminder", nil))
}
