package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"svitlo-ua/internal/alarm"
	"svitlo-ua/internal/locations"
	"svitlo-ua/internal/models"
	"svitlo-ua/internal/schedule"
)

// HistoryStore reads recorded alarm changes.
type HistoryStore interface {
	GetAlarmHistory(ctx context.Context, regionID string, from, to time.Time) ([]*models.AlarmEvent, error)
}

type Handlers struct {
	Catalog  *locations.Catalog
	Alarm    *alarm.Client
	History  HistoryStore // nil disables /api/alarms/history
	Location *time.Location
	Log      zerolog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

const (
	// DefaultHistoryLookback is the default time range for history queries.
	DefaultHistoryLookback = 24 * time.Hour
	// MaxHistoryRange is the maximum allowed time range for history queries.
	MaxHistoryRange = 30 * 24 * time.Hour
)

// RegisterRoutes mounts the API on r.
func (h *Handlers) RegisterRoutes(r fiber.Router) {
	api := r.Group("/api")
	api.Get("/ua", h.ProxyUA)
	api.Get("/locations", h.GetLocations)
	api.Get("/locations/resolve", h.ResolveLocation)
	api.Get("/schedule", h.GetSchedule)
	if h.History != nil {
		api.Get("/alarms/history", h.GetAlarmHistory)
	}
	r.Get("/health", h.Health)
}

func (h *Handlers) now() time.Time {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	if h.Location != nil {
		return now().In(h.Location)
	}
	return now()
}

// Health is a liveness probe.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// GetLocations returns the full oblast/city/group hierarchy.
func (h *Handlers) GetLocations(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.JSON(fiber.Map{"oblasts": h.Catalog.Tree()})
}

// ResolveLocation applies the selection cascade.
// Query params: ?oblast=&city=&group=
func (h *Handlers) ResolveLocation(c *fiber.Ctx) error {
	sel := h.Catalog.Resolve(c.Query("oblast"), c.Query("city"), c.Query("group"))
	return c.JSON(sel)
}

// GetSchedule returns the live status panel for a group at the current time.
// Query params: ?group=g2 (defaults to g1)
func (h *Handlers) GetSchedule(c *fiber.Ctx) error {
	view := schedule.BuildView(h.now(), c.Query("group"))
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(view)
}

// GetAlarmHistory returns recorded alarm changes.
// Query params: ?region=14&from=2026-02-09T00:00:00Z&to=2026-02-10T00:00:00Z
// Defaults to the last 24 hours for all regions.
func (h *Handlers) GetAlarmHistory(c *fiber.Ctx) error {
	now := h.now()
	from := now.Add(-DefaultHistoryLookback)
	to := now

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid from"})
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid to"})
		}
		to = t
	}
	if from.After(to) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from is after to"})
	}

	// Cap to max history range.
	if to.Sub(from) > MaxHistoryRange {
		from = to.Add(-MaxHistoryRange)
	}

	region := c.Query("region")
	events, err := h.History.GetAlarmHistory(c.UserContext(), region, from, to)
	if err != nil {
		h.Log.Error().Err(err).Str("region", region).Msg("load alarm history")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load history"})
	}

	if events == nil {
		events = make([]*models.AlarmEvent, 0)
	}

	return c.JSON(fiber.Map{
		"region": region,
		"from":   from.Format(time.RFC3339),
		"to":     to.Format(time.RFC3339),
		"events": events,
	})
}
