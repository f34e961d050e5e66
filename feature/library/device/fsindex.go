package device

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Config holds configuration for the filesystem-backed media index.
type Config struct {
	// Root is the directory holding one subdirectory per collection.
	Root string `mapstructure:"root" default:""`
	// Extensions is a comma-separated list of media file extensions to
	// index (lowercase, with dot). Empty indexes everything.
	Extensions string `mapstructure:"extensions" default:".jpg,.jpeg,.png,.heic,.gif,.mp4,.mov"`
}

// FSIndex is a device media index backed by a directory tree: each
// subdirectory of the root is one collection, each media file inside it one
// item keyed by its file name.
type FSIndex struct {
	root string
	exts map[string]struct{}
}

var _ Index = (*FSIndex)(nil)

// NewFSIndex creates a filesystem index over the configured root.
func NewFSIndex(cfg Config) (*FSIndex, error) {
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("media root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("media root %s is not a directory", cfg.Root)
	}

	exts := map[string]struct{}{}
	for _, e := range strings.Split(cfg.Extensions, ",") {
		e = strings.TrimSpace(strings.ToLower(e))
		if e != "" {
			exts[e] = struct{}{}
		}
	}

	return &FSIndex{root: cfg.Root, exts: exts}, nil
}

func (f *FSIndex) Collections(ctx context.Context) ([]Collection, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("read media root: %w", err)
	}

	var cols []Collection
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, err := f.Items(ctx, entry.Name(), ItemOptions{})
		if err != nil {
			return nil, err
		}
		col := Collection{
			ID:         entry.Name(),
			Name:       entry.Name(),
			AssetCount: len(items),
		}
		for _, it := range items {
			if it.FileModifiedAt.After(col.ModifiedAt) {
				col.ModifiedAt = it.FileModifiedAt
			}
		}
		cols = append(cols, col)
	}

	sort.Slice(cols, func(i, j int) bool { return cols[i].ID < cols[j].ID })
	return cols, nil
}

func (f *FSIndex) Items(ctx context.Context, collectionID string, opts ItemOptions) ([]Item, error) {
	dir := filepath.Join(f.root, filepath.Base(collectionID))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", collectionID, err)
	}

	var items []Item
	for _, entry := range entries {
		if entry.IsDir() || !f.isMedia(entry.Name()) {
			continue
		}
		localID := collectionID + "/" + entry.Name()
		if _, skip := opts.Exclude[localID]; skip {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		if opts.ModifiedAfter != nil && !info.ModTime().After(*opts.ModifiedAfter) {
			continue
		}
		items = append(items, Item{
			LocalID:        localID,
			FileName:       entry.Name(),
			FileModifiedAt: info.ModTime().UTC().Truncate(time.Second),
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].LocalID < items[j].LocalID })
	return items, nil
}

func (f *FSIndex) Open(ctx context.Context, collectionID, localID string) (io.ReadCloser, error) {
	name := filepath.Base(strings.TrimPrefix(localID, collectionID+"/"))
	path := filepath.Join(f.root, filepath.Base(collectionID), name)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open item %s: %w", localID, err)
	}
	return file, nil
}

func (f *FSIndex) isMedia(name string) bool {
	if len(f.exts) == 0 {
		return true
	}
	_, ok := f.exts[strings.ToLower(filepath.Ext(name))]
	return ok
}
