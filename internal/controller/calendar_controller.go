package controller

import (
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICalendarController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	UpdateStatus(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type calendarController struct {
	service service.ICalendarService
}

func NewCalendarController(service service.ICalendarService) ICalendarController {
	return &calendarController{service: service}
}

func (c *calendarController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/calendar/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("events", c.GetAll)
	h.Post("events", c.Create)
	h.Put("events/:id", c.Update)
	h.Patch("events/:id/status", c.UpdateStatus)
	h.Delete("events/:id", c.Delete)
}

// GetAll accepts an optional ?date=YYYY-MM-DD filter.
func (c *calendarController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.Context(), serverutils.UserId(ctx), ctx.Query("date"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all events", res))
}

func (c *calendarController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create event", res))
}

func (c *calendarController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateEventRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.Context(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update event", res))
}

func (c *calendarController) UpdateStatus(ctx *fiber.Ctx) error {
	var req dto.UpdateEventStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateStatus(ctx.Context(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update event status", res))
}

func (c *calendarController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.Context(), serverutils.UserId(ctx), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete event", nil))
}
