package store

import (
	"context"
	"testing"
	"time"

	"media-replica/feature/library"
	"media-replica/feature/library/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return New(gormDB), mock
}

func TestUsers(t *testing.T) {
	s, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "name", "email"}).
		AddRow("u1", "Owner", "owner@example.com").
		AddRow("u2", "Friend", "friend@example.com")
	mock.ExpectQuery("SELECT \\* FROM `users`").WillReturnRows(rows)

	users, err := s.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetsByOwner(t *testing.T) {
	s, mock := setupMockDB(t)
	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assetRows := sqlmock.NewRows([]string{"id", "owner_id", "device_id", "local_id", "file_modified_at", "local", "remote"}).
		AddRow(1, "u1", "d1", "img-1", modified, true, false)
	mock.ExpectQuery("SELECT \\* FROM `assets` WHERE owner_id = \\?").
		WithArgs("u1").
		WillReturnRows(assetRows)

	exifRows := sqlmock.NewRows([]string{"asset_id", "make"}).AddRow(1, "Canon")
	mock.ExpectQuery("SELECT \\* FROM `exifs`").WillReturnRows(exifRows)

	assets, err := s.AssetsByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "img-1", assets[0].LocalID)
	require.NotNil(t, assets[0].Exif)
	assert.Equal(t, "Canon", assets[0].Exif.Make)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetsByOwners_EmptyInputShortCircuits(t *testing.T) {
	s, mock := setupMockDB(t)

	assets, err := s.AssetsByOwners(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, assets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlbumAssetCount(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `album_assets`").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := s.AlbumAssetCount(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertAssets(t *testing.T) {
	t.Run("InsertAssignsRowIDAndWritesExif", func(t *testing.T) {
		s, mock := setupMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO `assets`").
			WillReturnResult(sqlmock.NewResult(5, 1))
		mock.ExpectCommit()
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO `exifs`").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		asset := &models.Asset{
			OwnerID: "u1", DeviceID: "d1", LocalID: "img-1",
			Exif: &models.Exif{Make: "Canon"},
		}
		require.NoError(t, s.UpsertAssets(context.Background(), []*models.Asset{asset}))
		assert.Equal(t, int64(5), asset.ID, "insert must propagate the new row id")
		assert.Equal(t, int64(5), asset.Exif.AssetID, "exif must be bound to the new row id")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyListIsNoOp", func(t *testing.T) {
		s, mock := setupMockDB(t)
		require.NoError(t, s.UpsertAssets(context.Background(), nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteAssets(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `exifs`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `album_assets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `albums` SET `thumbnail_asset_id`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `assets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.DeleteAssets(context.Background(), []int64{3}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkAssets(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `album_assets`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, s.LinkAssets(context.Background(), 1, []int64{10, 11}))
	assert.NoError(t, mock.ExpectationsWereMet())

	// Empty input never touches the database.
	require.NoError(t, s.LinkAssets(context.Background(), 1, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRollsBackOnError(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `album_assets`").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.Transaction(context.Background(), func(tx library.Store) error {
		return tx.UnlinkAssets(context.Background(), 1, []int64{2})
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
