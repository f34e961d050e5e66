package library

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"media-replica/feature/library/device"
	"media-replica/feature/library/models"
	"media-replica/feature/library/remote"
)

// Runner drives full reconciliation passes end to end: it pulls the
// transient remote or device state and feeds it to the Syncer. The Syncer
// itself never talks to the network or the filesystem.
type Runner struct {
	syncer *Syncer
	client remote.Client
	index  device.Index
	logger *zap.Logger

	userID       string
	sharedAlbums bool
	excludedIDs  []string
}

// RunnerOptions configures the passes a Runner performs.
type RunnerOptions struct {
	// SharedAlbums enables the shared remote album pass.
	SharedAlbums bool
	// ExcludedIDs lists device collection ids to skip.
	ExcludedIDs []string
}

// NewRunner wires a reconciliation runner.
func NewRunner(syncer *Syncer, client remote.Client, index device.Index, logger *zap.Logger, userID string, opts RunnerOptions) *Runner {
	return &Runner{
		syncer:       syncer,
		client:       client,
		index:        index,
		logger:       logger.With(zap.String("component", "runner")),
		userID:       userID,
		sharedAlbums: opts.SharedAlbums,
		excludedIDs:  opts.ExcludedIDs,
	}
}

// RunUsers refreshes the replica's user list from the server.
func (r *Runner) RunUsers(ctx context.Context) (bool, error) {
	dtos, err := r.client.GetUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("fetch users: %w", err)
	}

	users := make([]models.User, len(dtos))
	for i, dto := range dtos {
		users[i] = dto.ToModel()
	}
	return r.syncer.SyncUsers(ctx, users)
}

// RunAssets reconciles the owning user's full remote asset list.
func (r *Runner) RunAssets(ctx context.Context) (bool, error) {
	owner := models.User{ID: r.userID}
	return r.syncer.SyncRemoteAssets(ctx, owner, func(ctx context.Context) ([]models.Asset, error) {
		dtos, err := r.client.GetAssets(ctx, r.userID)
		if err != nil {
			return nil, err
		}
		if dtos == nil {
			return nil, nil
		}
		return remote.ToModels(dtos), nil
	})
}

// RunAlbums reconciles owned remote albums, and shared ones when enabled.
func (r *Runner) RunAlbums(ctx context.Context) (bool, error) {
	owned, err := r.client.GetAlbums(ctx, false)
	if err != nil {
		return false, fmt.Errorf("fetch albums: %w", err)
	}

	changed, err := r.syncer.SyncRemoteAlbums(ctx, owned, false, r.client.GetAlbumDetail)
	if err != nil {
		return changed, err
	}

	if !r.sharedAlbums {
		return changed, nil
	}

	shared, err := r.client.GetAlbums(ctx, true)
	if err != nil {
		return changed, fmt.Errorf("fetch shared albums: %w", err)
	}

	sharedChanged, err := r.syncer.SyncRemoteAlbums(ctx, shared, true, r.client.GetAlbumDetail)
	return changed || sharedChanged, err
}

// RunLocal reconciles the on-device media index against the replica.
func (r *Runner) RunLocal(ctx context.Context, forceRefresh bool) (bool, error) {
	collections, err := r.index.Collections(ctx)
	if err != nil {
		return false, fmt.Errorf("enumerate device collections: %w", err)
	}
	return r.syncer.SyncLocalAlbums(ctx, r.index, collections, r.excludedIDs, forceRefresh)
}

// RunAll performs every pass in dependency order: users before remote
// assets, assets before albums, device last. A pass error aborts the run
// but preserves whatever the earlier passes committed.
func (r *Runner) RunAll(ctx context.Context, forceRefresh bool) (bool, error) {
	changed := false

	passes := []struct {
		name string
		run  func(context.Context) (bool, error)
	}{
		{"users", r.RunUsers},
		{"assets", r.RunAssets},
		{"albums", r.RunAlbums},
		{"local", func(ctx context.Context) (bool, error) {
			return r.RunLocal(ctx, forceRefresh)
		}},
	}

	for _, pass := range passes {
		passChanged, err := pass.run(ctx)
		changed = changed || passChanged
		if err != nil {
			return changed, fmt.Errorf("%s pass: %w", pass.name, err)
		}
		r.logger.Debug("pass finished",
			zap.String("pass", pass.name),
			zap.Bool("changed", passChanged),
		)
	}

	return changed, nil
}
