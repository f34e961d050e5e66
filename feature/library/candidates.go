package library

import (
	"context"

	"media-replica/core/diff"
	"media-replica/feature/library/models"
)

// candidateSet accumulates possibly-orphaned assets across one whole album
// pass. Candidates are assets that lost a referencing album link; existing
// are assets proven still referenced (e.g. foreign shared assets still
// linked in a surviving album). Resolution happens once, at the end of the
// pass, before any physical delete.
type candidateSet struct {
	candidates []models.Asset
	existing   []models.Asset
}

func (c *candidateSet) addCandidates(assets []models.Asset) {
	c.candidates = append(c.candidates, assets...)
}

func (c *candidateSet) addExisting(assets []models.Asset) {
	c.existing = append(c.existing, assets...)
}

func (c *candidateSet) empty() bool {
	return len(c.candidates) == 0
}

// resolve splits the accumulated candidates into the safe-to-delete set and
// the set of updates for candidates that turned out to still be referenced.
// Both working lists are deduplicated by row id first; a candidate present
// in the existing set never ends up in the delete set.
func (c *candidateSet) resolve() (toDelete []int64, toUpdate []*models.Asset) {
	if c.empty() {
		return nil, nil
	}

	candidates := diff.SortAndDedup(c.candidates, compareByRowID)
	existing := diff.SortAndDedup(c.existing, compareByRowID)

	diff.Sorted(candidates, existing, compareByRowID,
		func(candidate, kept models.Asset) bool {
			// Still referenced: keep the row, but fold in any newer
			// information the candidate picked up during the pass.
			if canUpdate(&kept, &candidate) {
				toUpdate = append(toUpdate, updatedCopy(&kept, &candidate))
				return true
			}
			return false
		},
		func(candidate models.Asset) {
			toDelete = append(toDelete, candidate.ID)
		},
		func(models.Asset) {},
	)

	return toDelete, toUpdate
}

// flush resolves the candidate set and commits the resulting deletes and
// updates in one transaction. Returns whether anything was persisted.
func (s *Syncer) flushCandidates(ctx context.Context, set *candidateSet) bool {
	toDelete, toUpdate := set.resolve()
	if len(toDelete) == 0 && len(toUpdate) == 0 {
		return false
	}
	return s.commit(ctx, "delete-candidates", func(tx Store) error {
		if err := tx.DeleteAssets(ctx, toDelete); err != nil {
			return err
		}
		return tx.UpsertAssets(ctx, toUpdate)
	})
}

// ComputeIDsToRemove returns the physical ids of candidates that appear in
// no entry of existing. Inputs may contain duplicates and arrive in any
// order. Pure; no I/O.
func ComputeIDsToRemove(candidates, existing []models.Asset) []int64 {
	set := candidateSet{
		candidates: append([]models.Asset(nil), candidates...),
		existing:   append([]models.Asset(nil), existing...),
	}
	// Resolution updates are irrelevant here, only the delete set is.
	toDelete, _ := set.resolve()
	return toDelete
}
