package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/ironrank/internal/repository"
)

type ReferenceHandler struct {
	catalog *repository.RefCatalog
}

func NewReferenceHandler(catalog *repository.RefCatalog) *ReferenceHandler {
	return &ReferenceHandler{catalog: catalog}
}

// ListExercises GET /v1/exercises
func (h *ReferenceHandler) ListExercises(c *fiber.Ctx) error {
	exercises, err := h.catalog.Exercises(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(exercises)
}

// ListRanks GET /v1/ranks
func (h *ReferenceHandler) ListRanks(c *fiber.Ctx) error {
	ranks, err := h.catalog.Ranks(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ranks)
}

// RefreshCatalog POST /v1/admin/catalog/refresh/:key
// Invalidates one catalog key after a reference-data deploy.
func (h *ReferenceHandler) RefreshCatalog(c *fiber.Ctx) error {
	key := c.Params("key")
	h.catalog.Refresh(c.Context(), key)
	return c.JSON(fiber.Map{"message": "refreshed", "key": key})
}
