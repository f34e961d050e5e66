package library

import (
	"context"
	"errors"
	"testing"
	"time"

	"media-replica/feature/library/device"
	"media-replica/feature/library/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClient serves canned remote responses.
type fakeClient struct {
	users   []remote.User
	assets  map[string][]remote.Asset
	owned   []remote.Album
	shared  []remote.Album
	details map[string]*remote.AlbumDetail

	sharedCalls int
}

func (f *fakeClient) GetUsers(ctx context.Context) ([]remote.User, error) {
	return f.users, nil
}

func (f *fakeClient) GetAssets(ctx context.Context, userID string) ([]remote.Asset, error) {
	return f.assets[userID], nil
}

func (f *fakeClient) GetAlbums(ctx context.Context, shared bool) ([]remote.Album, error) {
	if shared {
		f.sharedCalls++
		return f.shared, nil
	}
	return f.owned, nil
}

func (f *fakeClient) GetAlbumDetail(ctx context.Context, albumID string) (*remote.AlbumDetail, error) {
	return f.details[albumID], nil
}

func newTestRunner(store Store, client remote.Client, idx *fakeIndex, opts RunnerOptions) *Runner {
	syncer := newTestSyncer(store)
	return NewRunner(syncer, client, idx, zap.NewNop(), "u1", opts)
}

func TestRunner_RunAll(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	store := newFakeStore()
	client := &fakeClient{
		users: []remote.User{{ID: "u1", Name: "Owner", UpdatedAt: base}},
		assets: map[string][]remote.Asset{
			"u1": {remoteAsset("u1", "img-1", "r-1", base)},
		},
		owned: []remote.Album{{ID: "a-1", Name: "Trip", AssetCount: 1, ModifiedAt: base}},
		details: map[string]*remote.AlbumDetail{
			"a-1": {
				Album:  remote.Album{ID: "a-1", Name: "Trip", AssetCount: 1, ModifiedAt: base},
				Assets: []remote.Asset{remoteAsset("u1", "img-1", "r-1", base)},
			},
		},
	}
	idx := &fakeIndex{items: map[string][]device.Item{}}

	runner := newTestRunner(store, client, idx, RunnerOptions{})
	changed, err := runner.RunAll(ctx, false)

	require.NoError(t, err)
	assert.True(t, changed)

	assert.Len(t, store.users, 1)
	assert.Len(t, store.assets, 1)
	assert.Len(t, store.albums, 1)
	assert.Zero(t, client.sharedCalls, "shared albums are off by default")
}

func TestRunner_SharedAlbumsToggle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	client := &fakeClient{}

	runner := newTestRunner(store, client, &fakeIndex{}, RunnerOptions{SharedAlbums: true})
	_, err := runner.RunAlbums(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, client.sharedCalls)
}

func TestRunner_RunAssetsStampsOwner(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	store := newFakeStore()
	client := &fakeClient{assets: map[string][]remote.Asset{
		"u1": {remoteAsset("", "img-1", "r-1", base)},
	}}

	runner := newTestRunner(store, client, &fakeIndex{}, RunnerOptions{})
	changed, err := runner.RunAssets(ctx)

	require.NoError(t, err)
	assert.True(t, changed)
	for _, a := range store.assets {
		assert.Equal(t, "u1", a.OwnerID)
	}
}

type failingClient struct {
	fakeClient
}

func (f *failingClient) GetUsers(ctx context.Context) ([]remote.User, error) {
	return nil, errors.New("remote down")
}

func TestRunner_RunAllAbortsOnPassError(t *testing.T) {
	store := newFakeStore()
	runner := newTestRunner(store, &failingClient{}, &fakeIndex{}, RunnerOptions{})

	_, err := runner.RunAll(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users pass")
}
