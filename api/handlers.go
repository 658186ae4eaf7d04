package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/CristiGvl/freqbridge/bridge"
)

const (
	defaultIntervalMS = 100
	defaultSamples    = 1

	// A collection blocks for samples*interval plus read latency, so the
	// handler deadline caps the total request duration.
	collectDeadline = 30 * time.Second
)

// Frequency endpoint. Runs one synchronous collection per request.
func (s *Server) getFrequency(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), collectDeadline)
	defer cancel()

	intervalMS := c.QueryInt("interval_ms", defaultIntervalMS)
	samples := c.QueryInt("samples", defaultSamples)

	res := s.collector.Collect(ctx, intervalMS, samples)
	if res.Status != bridge.StatusOK {
		return c.Status(httpStatusFor(res.Status)).JSON(fiber.Map{
			"status": bridge.StatusText(res.Status),
			"error":  res.ErrMessage,
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(res.JSON)
}

func httpStatusFor(status bridge.Status) int {
	switch status {
	case bridge.StatusUnavailable:
		return fiber.StatusServiceUnavailable
	case bridge.StatusPermission:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}
