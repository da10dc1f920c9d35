// Package transfers moves batches of assets between locations as
// all-or-nothing units, each batch audited by exactly one activity entry.
package transfers

import (
	"context"
	"errors"
	"sort"

	"fieldops/internal/activity"
	"fieldops/internal/registry"
	"fieldops/pkg/apperrors"
	"fieldops/pkg/models"
)

type Coordinator struct {
	store registry.AssetStore
	log   activity.Logger
	locks *LockTable
}

func NewCoordinator(store registry.AssetStore, log activity.Logger, locks *LockTable) *Coordinator {
	return &Coordinator{
		store: store,
		log:   log,
		locks: locks,
	}
}

// BulkTransfer moves every asset in the request to the new location. Either
// the whole batch moves and one assets_transferred entry is recorded, or
// nothing changes. The one exception: if the batch committed but the log
// write failed, the result is returned alongside an AuditGapError so the
// caller can tell "state changed, trail incomplete" apart from a full abort.
func (c *Coordinator) BulkTransfer(ctx context.Context, req models.TransferRequest, actor string) (*models.TransferResult, error) {
	if len(req.AssetIDs) == 0 {
		return nil, apperrors.NewValidation("assetIds must not be empty")
	}
	if req.NewLocation == "" {
		return nil, apperrors.NewValidation("newLocation is required")
	}

	ids := uniqueSorted(req.AssetIDs)

	release, err := c.locks.Acquire(ctx, ids)
	if err != nil {
		return nil, err
	}
	defer release()

	moves := make([]map[string]interface{}, 0, len(ids))
	var missing []int
	for _, id := range ids {
		asset, err := c.store.Get(id)
		if err != nil {
			var notFound *apperrors.NotFoundError
			if errors.As(err, &notFound) {
				missing = append(missing, id)
				continue
			}
			return nil, err
		}
		moves = append(moves, map[string]interface{}{
			"id":   asset.ID,
			"from": asset.Location,
			"to":   req.NewLocation,
		})
	}
	if len(missing) > 0 {
		return nil, apperrors.NewNotFound("asset", missing...)
	}

	// Cancellation is honored up to this point only; once mutation starts
	// the log write must always be attempted.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := c.store.Transfer(ids, req.NewLocation); err != nil {
		return nil, err
	}

	result := &models.TransferResult{
		Transferred: len(ids),
		NewLocation: req.NewLocation,
	}

	_, err = c.log.Record(models.ActivityEntry{
		Action:   models.ActionAssetsTransferred,
		AssetIDs: ids,
		Actor:    actor,
		Details: map[string]interface{}{
			"newLocation": req.NewLocation,
			"moves":       moves,
		},
	})
	if err != nil {
		return result, apperrors.NewAuditGap(err)
	}

	return result, nil
}

func uniqueSorted(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	result := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	sort.Ints(result)
	return result
}
