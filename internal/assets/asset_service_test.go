package assets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fieldops/internal/activity"
	"fieldops/internal/registry"
	"fieldops/internal/transfers"
	"fieldops/pkg/apperrors"
	"fieldops/pkg/models"
)

func newTestService(t *testing.T) (*AssetService, *activity.MemoryLog) {
	t.Helper()
	store := registry.NewMemoryStore()
	log := activity.NewMemoryLog()
	locks := transfers.NewLockTable(2 * time.Second)
	return NewAssetService(store, log, locks), log
}

func testRequest(serial string) models.AssetRequest {
	return models.AssetRequest{
		SerialNumber: serial,
		Name:         "Generator",
		Category:     "power",
		Location:     "Yard1",
		Status:       "active",
	}
}

func TestCreateLogsExactlyOneEntry(t *testing.T) {
	service, log := newTestService(t)

	asset, err := service.Create(testRequest("SN-001"), "alice")
	assert.NoError(t, err)

	fetched, err := service.Get(asset.ID)
	assert.NoError(t, err)
	assert.Equal(t, "SN-001", fetched.SerialNumber)

	entries, err := log.Query(models.ActivityFilter{Action: models.ActionAssetAdded, AssetID: asset.ID})
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Actor)
}

func TestCreateFailureLogsNothing(t *testing.T) {
	service, log := newTestService(t)

	_, err := service.Create(models.AssetRequest{Name: "no serial"}, "alice")
	var validation *apperrors.ValidationError
	assert.ErrorAs(t, err, &validation)

	entries, _ := log.Query(models.ActivityFilter{})
	assert.Empty(t, entries)
}

func TestUpdateLogsBeforeAndAfter(t *testing.T) {
	service, log := newTestService(t)
	asset, _ := service.Create(testRequest("SN-001"), "alice")

	newLocation := "Yard2"
	updated, err := service.Update(context.Background(), asset.ID,
		models.AssetUpdate{Location: &newLocation}, "bob")
	assert.NoError(t, err)
	assert.Equal(t, "Yard2", updated.Location)

	entries, err := log.Query(models.ActivityFilter{Action: models.ActionAssetUpdated})
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "bob", entries[0].Actor)

	before := entries[0].Details["before"].(*models.Asset)
	after := entries[0].Details["after"].(*models.Asset)
	assert.Equal(t, "Yard1", before.Location)
	assert.Equal(t, "Yard2", after.Location)
}

func TestDeleteLogsPriorSnapshot(t *testing.T) {
	service, log := newTestService(t)
	asset, _ := service.Create(testRequest("SN-001"), "alice")

	prior, err := service.Delete(context.Background(), asset.ID, "alice")
	assert.NoError(t, err)
	assert.Equal(t, "SN-001", prior.SerialNumber)

	_, err = service.Get(asset.ID)
	var notFound *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	entries, err := log.Query(models.ActivityFilter{Action: models.ActionAssetDeleted})
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	deleted := entries[0].Details["deleted"].(*models.Asset)
	assert.Equal(t, "SN-001", deleted.SerialNumber)
}

// failingLog refuses every write, simulating a storage failure at audit time.
type failingLog struct{}

func (f *failingLog) Record(models.ActivityEntry) (*models.ActivityEntry, error) {
	return nil, errors.New("disk full")
}

func (f *failingLog) Query(models.ActivityFilter) ([]models.ActivityEntry, error) {
	return nil, nil
}

func TestCreateAuditGapStillReturnsAsset(t *testing.T) {
	store := registry.NewMemoryStore()
	locks := transfers.NewLockTable(time.Second)
	service := NewAssetService(store, &failingLog{}, locks)

	asset, err := service.Create(testRequest("SN-001"), "alice")

	var gap *apperrors.AuditGapError
	assert.ErrorAs(t, err, &gap)
	assert.NotNil(t, asset)

	// the mutation itself committed
	fetched, err := store.Get(asset.ID)
	assert.NoError(t, err)
	assert.Equal(t, "SN-001", fetched.SerialNumber)
}

func TestHistoryCoversLifecycle(t *testing.T) {
	service, _ := newTestService(t)
	asset, _ := service.Create(testRequest("SN-001"), "alice")

	name := "Generator MkII"
	_, err := service.Update(context.Background(), asset.ID, models.AssetUpdate{Name: &name}, "alice")
	assert.NoError(t, err)
	_, err = service.Delete(context.Background(), asset.ID, "alice")
	assert.NoError(t, err)

	// the deleted asset stays a readable subject of its history
	entries, err := service.History(asset.ID)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, models.ActionAssetAdded, entries[0].Action)
	assert.Equal(t, models.ActionAssetUpdated, entries[1].Action)
	assert.Equal(t, models.ActionAssetDeleted, entries[2].Action)
}
