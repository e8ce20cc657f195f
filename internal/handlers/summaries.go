package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/irisplus/internal/store"
)

// ImpactCategoriesHandler lists the impact category summaries by rank
func ImpactCategoriesHandler(summaryStore *store.SummaryStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summaries, err := summaryStore.ListImpactCategories(c.UserContext())
		if err != nil {
			log.Error("impact category summaries failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(errorBody("error loading impact categories"))
		}
		return c.JSON(fiber.Map{"data": summaries, "count": len(summaries)})
	}
}

// SdgGoalsHandler lists the SDG goal summaries, largest first
func SdgGoalsHandler(summaryStore *store.SummaryStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summaries, err := summaryStore.ListSdgGoals(c.UserContext())
		if err != nil {
			log.Error("sdg goal summaries failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(errorBody("error loading sdg goals"))
		}
		return c.JSON(fiber.Map{"data": summaries, "count": len(summaries)})
	}
}

func errorBody(msg string) fiber.Map {
	return fiber.Map{"data": nil, "error": msg}
}
