package controller

import (
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISettingsController interface {
	RegisterRoutes(r fiber.Router)
	Get(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	AddCredential(ctx *fiber.Ctx) error
	DeleteCredential(ctx *fiber.Ctx) error
	SetActiveCredential(ctx *fiber.Ctx) error
}

type settingsController struct {
	service service.ISettingsService
}

func NewSettingsController(service service.ISettingsService) ISettingsController {
	return &settingsController{service: service}
}

func (c *settingsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/settings/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Get)
	h.Put("", c.Update)
	h.Post("credentials", c.AddCredential)
	h.Put("credentials/active", c.SetActiveCredential)
	h.Delete("credentials/:id", c.DeleteCredential)
}

func (c *settingsController) Get(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.Context(), serverutils.UserId(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get settings", res))
}

func (c *settingsController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.Context(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update settings", res))
}

func (c *settingsController) AddCredential(ctx *fiber.Ctx) error {
	var req dto.AddCredentialRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AddCredential(ctx.Context(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success add credential", res))
}

func (c *settingsController) DeleteCredential(ctx *fiber.Ctx) error {
	res, err := c.service.DeleteCredential(ctx.Context(), serverutils.UserId(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete credential", res))
}

func (c *settingsController) SetActiveCredential(ctx *fiber.Ctx) error {
	var req dto.SetActiveCredentialRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SetActiveCredential(ctx.Context(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set active credential", res))
}
