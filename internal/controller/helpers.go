package controller

import (
	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func parseID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.BadRequest("Invalid id", err)
	}
	return id, nil
}

func parseCategory(raw string) (entity.Category, error) {
	category := entity.Category(raw)
	if !category.Valid() {
		return "", apperror.BadRequest("Invalid category", nil)
	}
	return category, nil
}
