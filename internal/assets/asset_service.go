package assets

import (
	"context"

	"fieldops/internal/activity"
	"fieldops/internal/registry"
	"fieldops/internal/transfers"
	"fieldops/pkg/apperrors"
	"fieldops/pkg/models"
)

// AssetService wraps single-asset mutations so that every successful change
// is followed, synchronously and inside the same operation boundary, by its
// activity entry. A log failure after a committed mutation surfaces as an
// AuditGapError with the mutation result still attached.
type AssetService struct {
	store registry.AssetStore
	log   activity.Logger
	locks *transfers.LockTable
}

func NewAssetService(store registry.AssetStore, log activity.Logger, locks *transfers.LockTable) *AssetService {
	return &AssetService{
		store: store,
		log:   log,
		locks: locks,
	}
}

func (s *AssetService) Create(req models.AssetRequest, actor string) (*models.Asset, error) {
	asset, err := s.store.Add(req)
	if err != nil {
		return nil, err
	}

	_, err = s.log.Record(models.ActivityEntry{
		Action:   models.ActionAssetAdded,
		AssetIDs: []int{asset.ID},
		Actor:    actor,
		Details:  map[string]interface{}{"asset": asset},
	})
	if err != nil {
		return asset, apperrors.NewAuditGap(err)
	}
	return asset, nil
}

func (s *AssetService) Get(id int) (*models.Asset, error) {
	return s.store.Get(id)
}

func (s *AssetService) List() ([]models.Asset, error) {
	return s.store.List("")
}

func (s *AssetService) Update(ctx context.Context, id int, upd models.AssetUpdate, actor string) (*models.Asset, error) {
	release, err := s.locks.Acquire(ctx, []int{id})
	if err != nil {
		return nil, err
	}
	defer release()

	before, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Update(id, upd)
	if err != nil {
		return nil, err
	}

	_, err = s.log.Record(models.ActivityEntry{
		Action:   models.ActionAssetUpdated,
		AssetIDs: []int{id},
		Actor:    actor,
		Details: map[string]interface{}{
			"before": before,
			"after":  updated,
		},
	})
	if err != nil {
		return updated, apperrors.NewAuditGap(err)
	}
	return updated, nil
}

func (s *AssetService) Delete(ctx context.Context, id int, actor string) (*models.Asset, error) {
	release, err := s.locks.Acquire(ctx, []int{id})
	if err != nil {
		return nil, err
	}
	defer release()

	prior, err := s.store.Delete(id)
	if err != nil {
		return nil, err
	}

	_, err = s.log.Record(models.ActivityEntry{
		Action:   models.ActionAssetDeleted,
		AssetIDs: []int{id},
		Actor:    actor,
		Details:  map[string]interface{}{"deleted": prior},
	})
	if err != nil {
		return prior, apperrors.NewAuditGap(err)
	}
	return prior, nil
}

func (s *AssetService) History(id int) ([]models.ActivityEntry, error) {
	return s.log.Query(models.ActivityFilter{AssetID: id})
}

func (s *AssetService) Activity(filter models.ActivityFilter) ([]models.ActivityEntry, error) {
	return s.log.Query(filter)
}
