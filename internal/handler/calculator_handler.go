package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/ironrank/internal/domain"
	"github.com/mansoorceksport/ironrank/internal/middleware"
	"github.com/mansoorceksport/ironrank/internal/service"
)

type CalculatorHandler struct {
	orchestrator *service.CalculatorOrchestrator
	auditRepo    domain.CalculationAuditRepository // Exposed for simple reads
}

func NewCalculatorHandler(orchestrator *service.CalculatorOrchestrator, auditRepo domain.CalculationAuditRepository) *CalculatorHandler {
	return &CalculatorHandler{
		orchestrator: orchestrator,
		auditRepo:    auditRepo,
	}
}

// Calculate POST /v1/me/calculator
func (h *CalculatorHandler) Calculate(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)

	var req service.CalculatorInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	results, err := h.orchestrator.Calculate(c.Context(), userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(results)
}

// FinalizeSession POST /v1/me/sessions/:id/finalize
func (h *CalculatorHandler) FinalizeSession(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	sessionID := c.Params("id")

	results, err := h.orchestrator.FinalizeSession(c.Context(), userID, sessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(results)
}

// ListAudits GET /v1/me/calculator/audits
func (h *CalculatorHandler) ListAudits(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)

	audits, err := h.auditRepo.GetByUser(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(audits)
}

// respondError maps pipeline errors to HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidID):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrExerciseNotFound),
		errors.Is(err, domain.ErrBodyweightNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientBalance):
		status = fiber.StatusPaymentRequired
	case errors.Is(err, domain.ErrAuditTerminal):
		status = fiber.StatusConflict
	case errors.Is(err, domain.ErrDeadline):
		status = fiber.StatusGatewayTimeout
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
