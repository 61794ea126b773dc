package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/ironrank/internal/domain"
	"github.com/mansoorceksport/ironrank/internal/middleware"
)

type RankHandler struct {
	rankRepo domain.UserRankRepository
	prRepo   domain.PersonalRecordRepository
}

func NewRankHandler(rankRepo domain.UserRankRepository, prRepo domain.PersonalRecordRepository) *RankHandler {
	return &RankHandler{
		rankRepo: rankRepo,
		prRepo:   prRepo,
	}
}

// GetMyRanks GET /v1/me/ranks
// Returns the stored rank rows at all four tiers.
func (h *RankHandler) GetMyRanks(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	ctx := c.Context()

	exerciseRanks, err := h.rankRepo.GetExerciseRanks(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	muscleRanks, err := h.rankRepo.GetMuscleRanks(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	groupRanks, err := h.rankRepo.GetMuscleGroupRanks(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	overall, err := h.rankRepo.GetOverallRank(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"exercise_ranks":     exerciseRanks,
		"muscle_ranks":       muscleRanks,
		"muscle_group_ranks": groupRanks,
		"overall_rank":       overall,
	})
}

// GetMyPRs GET /v1/me/prs
func (h *RankHandler) GetMyPRs(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)

	prs, err := h.prRepo.GetByUser(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(prs)
}

// GetPRHistory GET /v1/me/prs/:exerciseKey/history
func (h *RankHandler) GetPRHistory(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	exerciseKey := c.Params("exerciseKey")

	history, err := h.prRepo.GetHistory(c.Context(), userID, exerciseKey)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(history)
}

// ResetLeaderboard POST /v1/admin/leaderboard/reset
// Zeroes the leaderboard channel on every rank row, the epoch boundary.
func (h *RankHandler) ResetLeaderboard(c *fiber.Ctx) error {
	if err := h.rankRepo.ResetLeaderboardScores(c.Context()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "leaderboard scores reset"})
}
