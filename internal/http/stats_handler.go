// Package http exposes the analytics query operations as a thin JSON API.
// Handlers only parse identifiers, call the service and shape the
// response; auth, rate limiting and input sanitization belong to the
// outer routing layer.
package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"visitlens/internal/analytics"
	"visitlens/internal/funnels"
	"visitlens/internal/projects"
	"visitlens/internal/segments"
)

// StatsHandler serves the project analytics endpoints.
type StatsHandler struct {
	db      *gorm.DB
	service *analytics.Service
	logger  *slog.Logger
}

// NewStatsHandler creates the handler.
func NewStatsHandler(db *gorm.DB, service *analytics.Service, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{db: db, service: service, logger: logger}
}

// Stats handles GET /api/v1/projects/:projectID/stats
func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	projectID, filter, err := h.scope(c)
	if err != nil {
		return err
	}

	totals, err := h.service.GetStats(c.Context(), projectID, filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(totals)
}

// Report handles GET /api/v1/projects/:projectID/report
func (h *StatsHandler) Report(c *fiber.Ctx) error {
	projectID, filter, err := h.scope(c)
	if err != nil {
		return err
	}

	report, err := h.service.GetReport(c.Context(), projectID, filter)
	if err != nil {
		return h.fail(c, err)
	}

	// Presentation-only conversions happen here, never in the analyzers.
	response := *report
	response.Countries = convertCountryStats(report.Countries)
	response.Devices = convertDeviceStats(report.Devices)
	return c.JSON(response)
}

// Comparison handles GET /api/v1/projects/:projectID/comparison
func (h *StatsHandler) Comparison(c *fiber.Ctx) error {
	projectID, filter, err := h.scope(c)
	if err != nil {
		return err
	}

	report, err := h.service.GetComparisonReport(c.Context(), projectID, filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

// Calendar handles GET /api/v1/projects/:projectID/calendar
func (h *StatsHandler) Calendar(c *fiber.Ctx) error {
	projectID, _, err := h.scope(c)
	if err != nil {
		return err
	}

	days, err := h.service.GetCalendar(c.Context(), projectID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(days)
}

// GoalStats handles GET /api/v1/projects/:projectID/goals
func (h *StatsHandler) GoalStats(c *fiber.Ctx) error {
	projectID, filter, err := h.scope(c)
	if err != nil {
		return err
	}

	stats, err := h.service.GetGoalStats(c.Context(), projectID, filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(stats)
}

// FunnelAnalysis handles GET /api/v1/projects/:projectID/funnels/:funnelID
func (h *StatsHandler) FunnelAnalysis(c *fiber.Ctx) error {
	projectID, filter, err := h.scope(c)
	if err != nil {
		return err
	}
	funnelID, err := c.ParamsInt("funnelID")
	if err != nil || funnelID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid funnel id")
	}

	results, err := h.service.GetFunnelAnalysis(c.Context(), projectID, uint(funnelID), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(results)
}

// SegmentAnalysis handles GET /api/v1/projects/:projectID/segments/:segmentID
func (h *StatsHandler) SegmentAnalysis(c *fiber.Ctx) error {
	projectID, filter, err := h.scope(c)
	if err != nil {
		return err
	}
	segmentID, err := c.ParamsInt("segmentID")
	if err != nil || segmentID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid segment id")
	}

	totals, err := h.service.GetSegmentAnalysis(c.Context(), projectID, uint(segmentID), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(totals)
}

// scope parses and checks the project scope shared by all endpoints.
func (h *StatsHandler) scope(c *fiber.Ctx) (uint, string, error) {
	id, err := c.ParamsInt("projectID")
	if err != nil || id <= 0 {
		return 0, "", fiber.NewError(fiber.StatusBadRequest, "invalid project id")
	}
	if _, err := projects.GetProjectOrNotFound(h.db, uint(id)); err != nil {
		var notFound *projects.ProjectNotFoundError
		if errors.As(err, &notFound) {
			return 0, "", fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "project lookup failed")
	}
	return uint(id), c.Query("filter", "7d"), nil
}

// fail maps service errors onto HTTP statuses.
func (h *StatsHandler) fail(c *fiber.Ctx, err error) error {
	var funnelNotFound *funnels.FunnelNotFoundError
	var segmentNotFound *segments.SegmentNotFoundError
	var unknownField *segments.UnknownFieldError

	switch {
	case errors.As(err, &funnelNotFound), errors.As(err, &segmentNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, funnels.ErrTooFewSteps), errors.As(err, &unknownField):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("analytics query failed", slog.Any("error", err))
		return fiber.NewError(fiber.StatusInternalServerError, "analytics query failed")
	}
}

// convertCountryStats maps ISO alpha-2 codes to display names.
func convertCountryStats(items []analytics.MetricCountResult) []analytics.MetricCountResult {
	if len(items) == 0 {
		return items
	}

	caser := cases.Upper(language.AmericanEnglish)
	countries := gountries.New()

	result := make([]analytics.MetricCountResult, len(items))
	for i, item := range items {
		name := item.Name
		if name != analytics.OtherBucketName {
			if country, err := countries.FindCountryByAlpha(name); err == nil {
				name = country.Name.Common
			} else {
				name = caser.String(name)
			}
		}
		result[i] = analytics.MetricCountResult{Name: name, Count: item.Count}
	}
	return result
}

// convertDeviceStats title-cases raw device type values.
func convertDeviceStats(items []analytics.MetricCountResult) []analytics.MetricCountResult {
	if len(items) == 0 {
		return items
	}

	caser := cases.Title(language.AmericanEnglish)
	result := make([]analytics.MetricCountResult, len(items))
	for i, item := range items {
		result[i] = analytics.MetricCountResult{Name: caser.String(item.Name), Count: item.Count}
	}
	return result
}
