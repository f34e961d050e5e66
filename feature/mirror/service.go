package mirror

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"media-replica/core/diff"
	"media-replica/core/storage"
	"media-replica/feature/library/device"
	"media-replica/feature/library/models"
)

// AssetSource yields the replica rows with local presence. The library
// store satisfies this.
type AssetSource interface {
	LocalAssets(ctx context.Context) ([]models.Asset, error)
}

// Report summarizes one mirror sweep.
type Report struct {
	Uploaded int `json:"uploaded"`
	Removed  int `json:"removed"`
	Kept     int `json:"kept"`
	Failed   int `json:"failed"`
}

// Service keeps an object storage bucket in step with the device's local
// assets. Object keys are the prefix followed by the asset's local id, so
// the bucket layout mirrors the device index layout.
type Service struct {
	client storage.Client
	bucket string
	prefix string
	source AssetSource
	index  device.Index
	logger *zap.Logger
}

// NewService creates a mirror service.
func NewService(client storage.Client, bucket, prefix string, source AssetSource, index device.Index, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		prefix: prefix,
		source: source,
		index:  index,
		logger: logger.With(zap.String("component", "mirror")),
	}
}

// EnsureBucket creates the mirror bucket if it does not exist yet.
func (s *Service) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("Created mirror bucket", zap.String("bucket", s.bucket))
	return nil
}

// Sweep diffs the replica's local assets against the bucket listing.
// Assets missing from the bucket are uploaded from the device index; stale
// objects with no matching asset are removed. Per-object upload failures
// are counted and skipped so one broken file cannot stall the sweep.
func (s *Service) Sweep(ctx context.Context) (*Report, error) {
	assets, err := s.source.LocalAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load local assets: %w", err)
	}
	assets = diff.SortAndDedup(assets, func(a, b models.Asset) int {
		return strings.Compare(a.LocalID, b.LocalID)
	})

	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	var toUpload []models.Asset
	var toRemove []string

	diff.Sorted(assets, keys,
		func(a models.Asset, key string) int {
			return strings.Compare(s.key(a), key)
		},
		func(models.Asset, string) bool {
			report.Kept++
			return false
		},
		func(a models.Asset) { toUpload = append(toUpload, a) },
		func(key string) { toRemove = append(toRemove, key) },
	)

	for _, a := range toUpload {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.upload(ctx, a); err != nil {
			s.logger.Warn("Upload failed, skipping",
				zap.String("localId", a.LocalID),
				zap.Error(err),
			)
			report.Failed++
			continue
		}
		report.Uploaded++
	}

	if len(toRemove) > 0 {
		removed, err := s.removeAll(ctx, toRemove)
		report.Removed = removed
		if err != nil {
			return report, err
		}
	}

	s.logger.Info("Mirror sweep finished",
		zap.Int("uploaded", report.Uploaded),
		zap.Int("removed", report.Removed),
		zap.Int("kept", report.Kept),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// Count returns the number of objects currently under the mirror prefix.
func (s *Service) Count(ctx context.Context) (int, error) {
	keys, err := s.listKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *Service) key(a models.Asset) string {
	return s.prefix + a.LocalID
}

func (s *Service) listKeys(ctx context.Context) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", s.bucket, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Service) upload(ctx context.Context, a models.Asset) error {
	collectionID, _, found := strings.Cut(a.LocalID, "/")
	if !found {
		return fmt.Errorf("local id %s has no collection part", a.LocalID)
	}

	rc, err := s.index.Open(ctx, collectionID, a.LocalID)
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = s.client.PutObject(ctx, s.bucket, s.key(a), rc, -1, minio.PutObjectOptions{})
	return err
}

func (s *Service) removeAll(ctx context.Context, keys []string) (int, error) {
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	removed := len(keys)
	for rmErr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		removed--
		s.logger.Warn("Remove failed",
			zap.String("key", rmErr.ObjectName),
			zap.Error(rmErr.Err),
		)
	}
	return removed, nil
}
