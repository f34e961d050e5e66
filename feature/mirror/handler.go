package mirror

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"media-replica/core/logger"
)

// Handler exposes the mirror sweep over HTTP.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the mirror routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/mirror")
	group.Get("/status", h.HandleStatus)
	group.Post("/sweep", h.HandleSweep)
}

// HandleStatus reports the number of mirrored objects.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	count, err := h.service.Count(c.Context())
	if err != nil {
		l.Error("Mirror status failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"objects": count})
}

// HandleSweep runs a mirror sweep and reports the outcome.
func (h *Handler) HandleSweep(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	l.Info("Triggering mirror sweep")

	report, err := h.service.Sweep(c.Context())
	if err != nil {
		l.Error("Mirror sweep failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(report)
}
