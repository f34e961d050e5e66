package library

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"media-replica/core/database"
	"media-replica/core/logger"
	"media-replica/feature/library/models"
)

// Handler exposes the reconciliation passes over HTTP.
type Handler struct {
	runner *Runner
	db     *gorm.DB
	logger *zap.Logger

	// flight collapses concurrent triggers of the same pass into one
	// execution; late callers share the first caller's result.
	flight singleflight.Group
}

// NewHandler creates a new HTTP handler.
func NewHandler(runner *Runner, db *gorm.DB, logger *zap.Logger) *Handler {
	return &Handler{runner: runner, db: db, logger: logger}
}

// RegisterRoutes registers the library routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/library")
	group.Get("/status", h.HandleStatus)

	sync := group.Group("/sync")
	sync.Post("/users", h.HandleSyncUsers)
	sync.Post("/assets", h.HandleSyncAssets)
	sync.Post("/albums", h.HandleSyncAlbums)
	sync.Post("/local", h.HandleSyncLocal)
	sync.Post("/run", h.HandleSyncRun)
}

// HandleStatus reports the replica's table counts.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	counts, err := database.TableCounts(h.db.WithContext(c.Context()), models.All()...)
	if err != nil {
		l.Error("status query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"tables": counts})
}

// HandleSyncUsers triggers the user pass.
func (h *Handler) HandleSyncUsers(c *fiber.Ctx) error {
	return h.trigger(c, "users", func() (bool, error) {
		return h.runner.RunUsers(c.Context())
	})
}

// HandleSyncAssets triggers the remote asset pass.
func (h *Handler) HandleSyncAssets(c *fiber.Ctx) error {
	return h.trigger(c, "assets", func() (bool, error) {
		return h.runner.RunAssets(c.Context())
	})
}

// HandleSyncAlbums triggers the remote album pass.
func (h *Handler) HandleSyncAlbums(c *fiber.Ctx) error {
	return h.trigger(c, "albums", func() (bool, error) {
		return h.runner.RunAlbums(c.Context())
	})
}

// HandleSyncLocal triggers the device pass. Pass force=true to skip the
// add-only fast path.
func (h *Handler) HandleSyncLocal(c *fiber.Ctx) error {
	force := c.Query("force") == "true"
	return h.trigger(c, "local", func() (bool, error) {
		return h.runner.RunLocal(c.Context(), force)
	})
}

// HandleSyncRun triggers every pass in order.
func (h *Handler) HandleSyncRun(c *fiber.Ctx) error {
	force := c.Query("force") == "true"
	return h.trigger(c, "run", func() (bool, error) {
		return h.runner.RunAll(c.Context(), force)
	})
}

type syncResult struct {
	changed bool
}

func (h *Handler) trigger(c *fiber.Ctx, pass string, run func() (bool, error)) error {
	l := logger.WithRayID(h.logger, c)
	l.Info("Triggering sync pass", zap.String("pass", pass))

	res, err, shared := h.flight.Do(pass, func() (any, error) {
		changed, err := run()
		return syncResult{changed: changed}, err
	})
	if err != nil {
		l.Error("Sync pass failed", zap.String("pass", pass), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"pass":    pass,
		"changed": res.(syncResult).changed,
		"shared":  shared,
	})
}
