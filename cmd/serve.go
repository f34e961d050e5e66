package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"media-replica/core/config"
	"media-replica/core/database"
	"media-replica/core/loader"
	"media-replica/core/logger"
	"media-replica/core/middleware/auth"
	"media-replica/core/middleware/rayid"
	"media-replica/core/storage"

	"media-replica/feature/library"
	"media-replica/feature/library/device"
	"media-replica/feature/library/models"
	"media-replica/feature/library/remote"
	"media-replica/feature/mirror"
	libstore "media-replica/feature/library/store"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the media replica server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := database.Migrate(db, models.All()...); err != nil {
			logg.Fatal("Failed to migrate database", zap.Error(err))
		}
		logg.Info("Connected to replica database", zap.String("driver", cfg.Database.Driver))

		// 4. Remote client and device index
		client, err := remote.NewClient(cfg.Remote)
		if err != nil {
			logg.Fatal("Failed to create remote client", zap.Error(err))
		}
		index, err := device.NewFSIndex(cfg.Media)
		if err != nil {
			logg.Fatal("Failed to open media index", zap.Error(err))
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 6. Reconciliation engine
		syncer := library.NewSyncer(libstore.New(db), logg, cfg.Sync.UserID, cfg.Sync.DeviceID)
		runner := library.NewRunner(syncer, client, index, logg, cfg.Sync.UserID, library.RunnerOptions{
			SharedAlbums: cfg.Sync.SharedAlbums,
			ExcludedIDs:  cfg.Sync.ExcludedAlbumIDs(),
		})

		// 7. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(library.NewFeature(runner, db, logg))

		if cfg.Mirror.Enabled {
			store, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			svc := mirror.NewService(store, cfg.Storage.Bucket, cfg.Mirror.Prefix, libstore.New(db), index, logg)
			if err := svc.EnsureBucket(cmd.Context()); err != nil {
				logg.Fatal("Failed to prepare mirror bucket", zap.Error(err))
			}
			mgr.Register(mirror.NewFeature(svc, logg, true))
		}

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 8. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
