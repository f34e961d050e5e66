package library

import (
	"testing"
	"time"

	"media-replica/feature/library/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowAsset(id int64) models.Asset {
	return models.Asset{ID: id, OwnerID: "u1", DeviceID: "d1"}
}

func TestComputeIDsToRemove(t *testing.T) {
	t.Run("UnreferencedCandidatesAreRemoved", func(t *testing.T) {
		candidates := []models.Asset{rowAsset(1), rowAsset(2), rowAsset(3)}
		existing := []models.Asset{rowAsset(2)}

		ids := ComputeIDsToRemove(candidates, existing)
		assert.Equal(t, []int64{1, 3}, ids)
	})

	t.Run("DuplicatesAndOrderDoNotMatter", func(t *testing.T) {
		candidates := []models.Asset{rowAsset(3), rowAsset(1), rowAsset(3), rowAsset(1)}
		existing := []models.Asset{rowAsset(3), rowAsset(3)}

		ids := ComputeIDsToRemove(candidates, existing)
		assert.Equal(t, []int64{1}, ids)
	})

	t.Run("EmptyCandidates", func(t *testing.T) {
		assert.Empty(t, ComputeIDsToRemove(nil, []models.Asset{rowAsset(1)}))
	})

	t.Run("ExtraExistingEntriesAreIgnored", func(t *testing.T) {
		candidates := []models.Asset{rowAsset(5)}
		existing := []models.Asset{rowAsset(5), rowAsset(6), rowAsset(7)}

		assert.Empty(t, ComputeIDsToRemove(candidates, existing))
	})

	t.Run("InputsAreNotMutated", func(t *testing.T) {
		candidates := []models.Asset{rowAsset(2), rowAsset(1)}
		existing := []models.Asset{rowAsset(9), rowAsset(2)}

		ComputeIDsToRemove(candidates, existing)
		assert.Equal(t, int64(2), candidates[0].ID)
		assert.Equal(t, int64(9), existing[0].ID)
	})
}

func TestCandidateSetResolve(t *testing.T) {
	t.Run("SurvivorPicksUpNewerInfo", func(t *testing.T) {
		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

		kept := rowAsset(4)
		kept.FileModifiedAt = base

		candidate := kept
		candidate.FileModifiedAt = base.Add(time.Minute)
		candidate.RemoteID = strPtr("r-4")

		set := candidateSet{
			candidates: []models.Asset{candidate, rowAsset(8)},
			existing:   []models.Asset{kept},
		}

		toDelete, toUpdate := set.resolve()
		assert.Equal(t, []int64{8}, toDelete)
		require.Len(t, toUpdate, 1)
		assert.Equal(t, int64(4), toUpdate[0].ID)
		assert.Equal(t, "r-4", *toUpdate[0].RemoteID)
	})

	t.Run("EmptySetResolvesToNothing", func(t *testing.T) {
		set := candidateSet{existing: []models.Asset{rowAsset(1)}}
		toDelete, toUpdate := set.resolve()
		assert.Nil(t, toDelete)
		assert.Nil(t, toUpdate)
	})
}
