package handler

import (
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	version  string
	provider string
}

func NewHealthHandler(version, provider string) *HealthHandler {
	return &HealthHandler{version: version, provider: provider}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Provider string `json:"provider,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:   "ready",
		Provider: h.provider,
	})
}
