package handlers

import (
	"errors"
	"strconv"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/dto"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func pagination(c *fiber.Ctx) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *ProfileHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)

	profiles, total, err := h.profileService.ListProfiles(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch profiles",
		})
	}

	return c.JSON(fiber.Map{
		"profiles": profiles,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	profile, err := h.profileService.GetByProfileID(c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch profile",
		})
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) GetByUsername(c *fiber.Ctx) error {
	profile, err := h.profileService.GetByUsername(c.Params("username"))
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch profile",
		})
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) ListEvents(c *fiber.Ctx) error {
	limit, offset := pagination(c)

	events, total, err := h.profileService.ListEvents(c.Params("id"), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch profile events",
		})
	}

	return c.JSON(fiber.Map{
		"events": events,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *ProfileHandler) ListFollowers(c *fiber.Ctx) error {
	limit, offset := pagination(c)

	profiles, total, err := h.profileService.ListFollowers(c.Params("id"), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch followers",
		})
	}

	return c.JSON(fiber.Map{
		"followers": profiles,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

func (h *ProfileHandler) ListFollowing(c *fiber.Ctx) error {
	limit, offset := pagination(c)

	profiles, total, err := h.profileService.ListFollowing(c.Params("id"), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch following",
		})
	}

	return c.JSON(fiber.Map{
		"following": profiles,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

func (h *ProfileHandler) ListBlocks(c *fiber.Ctx) error {
	limit, offset := pagination(c)

	blocks, total, err := h.profileService.ListBlocks(c.Params("id"), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch blocks",
		})
	}

	return c.JSON(fiber.Map{
		"blocks": blocks,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
