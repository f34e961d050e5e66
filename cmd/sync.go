package cmd

import (
	"context"
	"fmt"

	"media-replica/core/config"
	"media-replica/core/database"
	"media-replica/core/logger"
	"media-replica/core/storage"
	"media-replica/feature/library"
	"media-replica/feature/library/device"
	"media-replica/feature/library/models"
	"media-replica/feature/library/remote"
	"media-replica/feature/mirror"
	libstore "media-replica/feature/library/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the sync command
	forceRefresh bool
	withMirror   bool
	onlyPass     string
)

// syncCmd runs a one-shot reconciliation pass and exits.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a reconciliation pass against the remote server and the device",
	Long: `Run a one-shot reconciliation pass: users, remote assets, remote albums
and the on-device media index, in that order.

Examples:
  # Full run
  sync

  # Skip the device fast path and rediff every collection
  sync --force

  # One pass only
  sync --pass assets

  # Full run followed by a storage mirror sweep
  sync --mirror`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&forceRefresh, "force", false, "Skip the add-only fast path for device collections")
	syncCmd.Flags().BoolVar(&withMirror, "mirror", false, "Run a storage mirror sweep after the passes")
	syncCmd.Flags().StringVar(&onlyPass, "pass", "", "Run a single pass: users, assets, albums or local")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	// Connect and migrate the replica database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db, models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	client, err := remote.NewClient(cfg.Remote)
	if err != nil {
		return fmt.Errorf("failed to create remote client: %w", err)
	}
	index, err := device.NewFSIndex(cfg.Media)
	if err != nil {
		return fmt.Errorf("failed to open media index: %w", err)
	}

	syncer := library.NewSyncer(libstore.New(db), l, cfg.Sync.UserID, cfg.Sync.DeviceID)
	runner := library.NewRunner(syncer, client, index, l, cfg.Sync.UserID, library.RunnerOptions{
		SharedAlbums: cfg.Sync.SharedAlbums,
		ExcludedIDs:  cfg.Sync.ExcludedAlbumIDs(),
	})

	var changed bool
	switch onlyPass {
	case "":
		changed, err = runner.RunAll(ctx, forceRefresh)
	case "users":
		changed, err = runner.RunUsers(ctx)
	case "assets":
		changed, err = runner.RunAssets(ctx)
	case "albums":
		changed, err = runner.RunAlbums(ctx)
	case "local":
		changed, err = runner.RunLocal(ctx, forceRefresh)
	default:
		return fmt.Errorf("unknown pass %q", onlyPass)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	l.Info("Sync finished", zap.Bool("changed", changed))

	if withMirror {
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		svc := mirror.NewService(store, cfg.Storage.Bucket, cfg.Mirror.Prefix, libstore.New(db), index, l)
		if err := svc.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to prepare mirror bucket: %w", err)
		}
		if _, err := svc.Sweep(ctx); err != nil {
			return fmt.Errorf("mirror sweep failed: %w", err)
		}
	}

	return nil
}
