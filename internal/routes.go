package internal

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"visitlens/internal/http"
)

// MountRoutes mounts the analytics query API.
func MountRoutes(server *fiber.App, app *Application) {
	server.Use(requestid.New())
	server.Use(recover.New())

	server.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	stats := http.NewStatsHandler(app.DBManager.GetConnection(), app.Service, app.Logger)

	v1 := server.Group("/api/v1")
	projects := v1.Group("/projects/:projectID")
	projects.Get("/stats", stats.Stats)
	projects.Get("/report", stats.Report)
	projects.Get("/comparison", stats.Comparison)
	projects.Get("/calendar", stats.Calendar)
	projects.Get("/goals", stats.GoalStats)
	projects.Get("/funnels/:funnelID", stats.FunnelAnalysis)
	projects.Get("/segments/:segmentID", stats.SegmentAnalysis)
}
