package controller

import (
	"advisor-chat-be/internal/dto"
	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/pkg/apperror"
	"advisor-chat-be/internal/pkg/serverutils"
	"advisor-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISourceController interface {
	RegisterRoutes(r fiber.Router, adminOnly fiber.Handler)
	List(ctx *fiber.Ctx) error
	UploadFile(ctx *fiber.Ctx) error
	AddLink(ctx *fiber.Ctx) error
	AddText(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Toggle(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type sourceController struct {
	service service.ISourceService
}

func NewSourceController(service service.ISourceService) ISourceController {
	return &sourceController{service: service}
}

func (c *sourceController) RegisterRoutes(r fiber.Router, adminOnly fiber.Handler) {
	h := r.Group("/source/v1")
	h.Get("", c.List)
	h.Post("/:category/file", adminOnly, c.UploadFile)
	h.Post("/:category/link", adminOnly, c.AddLink)
	h.Post("/:category/text", adminOnly, c.AddText)
	h.Put("/:id/toggle", adminOnly, c.Toggle)
	h.Put("/:id", adminOnly, c.Update)
	h.Delete("/:id", adminOnly, c.Delete)
	h.Delete("", adminOnly, c.Clear)
}

func (c *sourceController) List(ctx *fiber.Ctx) error {
	categories := entity.Categories
	if raw := ctx.Query("category"); raw != "" {
		category, err := parseCategory(raw)
		if err != nil {
			return err
		}
		categories = []entity.Category{category}
	}

	var sources []entity.Source
	for _, category := range categories {
		res, err := c.service.List(ctx.UserContext(), category)
		if err != nil {
			return err
		}
		sources = append(sources, res...)
	}
	return ctx.JSON(serverutils.SuccessResponse("Sources", dto.NewSourceResponses(sources)))
}

func (c *sourceController) UploadFile(ctx *fiber.Ctx) error {
	category, err := parseCategory(ctx.Params("category"))
	if err != nil {
		return err
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		return apperror.BadRequest("File is required", err)
	}

	src, err := c.service.AddFile(ctx.UserContext(), category, file)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Source added", dto.NewSourceResponse(src)))
}

func (c *sourceController) AddLink(ctx *fiber.Ctx) error {
	category, err := parseCategory(ctx.Params("category"))
	if err != nil {
		return err
	}

	var req dto.AddLinkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	src, err := c.service.AddLink(ctx.UserContext(), category, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Source added", dto.NewSourceResponse(src)))
}

func (c *sourceController) AddText(ctx *fiber.Ctx) error {
	category, err := parseCategory(ctx.Params("category"))
	if err != nil {
		return err
	}

	var req dto.AddTextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	src, err := c.service.AddText(ctx.UserContext(), category, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Source added", dto.NewSourceResponse(src)))
}

func (c *sourceController) Update(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateSourceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	src, err := c.service.Update(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Source updated", dto.NewSourceResponse(src)))
}

func (c *sourceController) Toggle(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	src, err := c.service.Toggle(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Source updated", dto.NewSourceResponse(src)))
}

func (c *sourceController) Delete(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Remove(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Source deleted", nil))
}

func (c *sourceController) Clear(ctx *fiber.Ctx) error {
	if err := c.service.ClearAll(ctx.UserContext()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Workspace cleared", nil))
}
