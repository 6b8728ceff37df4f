package controller

import (
	"advisor-chat-be/internal/dto"
	"advisor-chat-be/internal/pkg/apperror"
	"advisor-chat-be/internal/pkg/serverutils"
	"advisor-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router, adminOnly fiber.Handler)
	Login(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
}

type adminController struct {
	auth  service.IAuthService
	admin service.IAdminService
}

func NewAdminController(auth service.IAuthService, admin service.IAdminService) IAdminController {
	return &adminController{auth: auth, admin: admin}
}

func (c *adminController) RegisterRoutes(r fiber.Router, adminOnly fiber.Handler) {
	h := r.Group("/admin/v1")
	h.Post("/login", c.Login)
	h.Get("/logs", adminOnly, c.GetLogs)
}

func (c *adminController) Login(ctx *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.auth.Login(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Login success", res))
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	logs, err := c.admin.GetLogs(
		ctx.UserContext(),
		ctx.Query("level"),
		ctx.Query("module"),
		ctx.QueryInt("page", 1),
		ctx.QueryInt("limit", 50),
	)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}
