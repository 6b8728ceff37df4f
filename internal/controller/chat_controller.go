package controller

import (
	"bufio"
	"encoding/json"
	"fmt"

	"advisor-chat-be/internal/dto"
	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/pkg/apperror"
	"advisor-chat-be/internal/pkg/serverutils"
	"advisor-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SSE event name of the first frame, carrying both message ids.
const chatEventAccepted = "accepted"

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	GetMessages(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
	Focus(ctx *fiber.Ctx) error
	GetFocus(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Get("/repository/focus", c.GetFocus)
	h.Post("/repository/focus/:id", c.Focus)
	h.Get("/:category/messages", c.GetMessages)
	h.Post("/:category/send", c.Send)
}

func (c *chatController) GetMessages(ctx *fiber.Ctx) error {
	category, err := parseCategory(ctx.Params("category"))
	if err != nil {
		return err
	}

	msgs, err := c.service.GetTranscript(ctx.UserContext(), category)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Messages", msgs))
}

func writeSSE(w *bufio.Writer, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return w.Flush()
}

// Send answers over Server-Sent Events: one accepted frame, one frame per
// fragment with the whole answer so far, then a done frame.
func (c *chatController) Send(ctx *fiber.Ctx) error {
	category := entity.Category(ctx.Params("category"))

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, stream, err := c.service.Send(ctx.UserContext(), category, &req)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		// The answer finishes without us once the client is gone; keep draining.
		defer func() {
			for range stream {
			}
		}()

		if err := writeSSE(w, chatEventAccepted, res); err != nil {
			return
		}
		for evt := range stream {
			if err := writeSSE(w, evt.Type, evt); err != nil {
				return
			}
		}
	})
	return nil
}

func (c *chatController) Focus(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Focus(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Source focused", res))
}

func (c *chatController) GetFocus(ctx *fiber.Ctx) error {
	res, err := c.service.GetFocus(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Focused source", res))
}
