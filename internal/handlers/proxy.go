package handlers

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"svitlo-ua/internal/alarm"
	"svitlo-ua/internal/metrics"
)

const defaultTextContentType = "text/plain; charset=utf-8"

// ProxyUA relays GET /api/ua?path=<upstream path>&... to the alarm API.
// Every query parameter other than path is forwarded.
func (h *Handlers) ProxyUA(c *fiber.Ctx) error {
	query := url.Values{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		query.Add(string(k), string(v))
	})

	start := time.Now()
	resp, err := h.Alarm.Relay(c.UserContext(), c.Query("path"), query)
	metrics.ObserveProxyDuration(time.Since(start))
	if err != nil {
		return h.proxyError(c, err)
	}
	metrics.IncProxyRequest(metrics.OutcomeOK)

	c.Set(fiber.HeaderCacheControl, "no-store")
	if resp.IsJSON {
		return c.Status(fiber.StatusOK).JSON(resp.JSON)
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = defaultTextContentType
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(fiber.StatusOK).Send(resp.Body)
}

// proxyError converts a relay failure into the response body for it.
func (h *Handlers) proxyError(c *fiber.Ctx, err error) error {
	var (
		statusErr *alarm.StatusError
		valErr    *alarm.ValidationError
		cfgErr    *alarm.ConfigurationError
		tErr      *alarm.TransportError
	)

	if errors.As(err, &statusErr) {
		metrics.IncProxyRequest(metrics.OutcomeUpstreamStatus)
		h.Log.Warn().Int("upstream_status", statusErr.Status).Str("target", statusErr.Target).Msg("upstream request failed")
		return c.Status(statusErr.HTTPStatus()).JSON(fiber.Map{
			"error":          "Upstream request failed",
			"upstreamStatus": statusErr.Status,
			"upstreamBody":   statusErr.Body,
			"target":         statusErr.Target,
		})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.As(err, &valErr):
		metrics.IncProxyRequest(metrics.OutcomeValidation)
		status = valErr.HTTPStatus()
	case errors.As(err, &cfgErr):
		metrics.IncProxyRequest(metrics.OutcomeConfiguration)
		h.Log.Error().Err(err).Msg("proxy misconfigured")
	case errors.As(err, &tErr):
		metrics.IncProxyRequest(metrics.OutcomeTransport)
		h.Log.Error().Err(err).Msg("upstream unreachable")
	default:
		metrics.IncProxyRequest(metrics.OutcomeDecode)
		h.Log.Error().Err(err).Msg("upstream response unreadable")
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
