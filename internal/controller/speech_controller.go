package controller

import (
	"advisor-chat-be/internal/dto"
	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/pkg/apperror"
	"advisor-chat-be/internal/pkg/serverutils"
	"advisor-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISpeechController interface {
	RegisterRoutes(r fiber.Router)
	Toggle(ctx *fiber.Ctx) error
	Stop(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type speechController struct {
	chat     service.IChatService
	playback service.IPlaybackService
}

func NewSpeechController(chat service.IChatService, playback service.IPlaybackService) ISpeechController {
	return &speechController{chat: chat, playback: playback}
}

func (c *speechController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/speech/v1")
	h.Post("/toggle", c.Toggle)
	h.Post("/stop", c.Stop)
	h.Get("/status", c.Status)
}

// Toggle blocks until the message is playing or playback is back to idle.
func (c *speechController) Toggle(ctx *fiber.Ctx) error {
	var req dto.ToggleSpeechRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	text, err := c.chat.MessageText(ctx.UserContext(), entity.Category(req.Category), req.MessageId)
	if err != nil {
		return err
	}

	st := c.playback.Toggle(ctx.UserContext(), req.MessageId, text)
	return ctx.JSON(serverutils.SuccessResponse("Playback status", st))
}

func (c *speechController) Stop(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Playback status", c.playback.Stop()))
}

func (c *speechController) Status(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Playback status", c.playback.Status()))
}
