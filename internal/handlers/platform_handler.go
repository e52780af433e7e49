package handlers

import (
	"errors"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/dto"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PlatformHandler struct {
	platformService *services.PlatformService
}

func NewPlatformHandler(platformService *services.PlatformService) *PlatformHandler {
	return &PlatformHandler{platformService: platformService}
}

func (h *PlatformHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	approvedOnly := c.QueryBool("approved", false)

	platforms, total, err := h.platformService.ListPlatforms(approvedOnly, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch platforms",
		})
	}

	return c.JSON(fiber.Map{
		"platforms": platforms,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

func (h *PlatformHandler) Get(c *fiber.Ctx) error {
	platform, err := h.platformService.GetByPlatformID(c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrPlatformNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch platform",
		})
	}
	return c.JSON(platform)
}

func (h *PlatformHandler) ListModerators(c *fiber.Ctx) error {
	moderators, err := h.platformService.ListModerators(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch moderators",
		})
	}
	return c.JSON(fiber.Map{"moderators": moderators})
}

func (h *PlatformHandler) ListMembers(c *fiber.Ctx) error {
	limit, offset := pagination(c)

	members, total, err := h.platformService.ListMembers(c.Params("id"), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch members",
		})
	}

	return c.JSON(fiber.Map{
		"members": members,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *PlatformHandler) ListEvents(c *fiber.Ctx) error {
	limit, offset := pagination(c)

	events, total, err := h.platformService.ListEvents(c.Params("id"), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch platform events",
		})
	}

	return c.JSON(fiber.Map{
		"events": events,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
