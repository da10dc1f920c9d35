// Package registry owns the durable table of asset records. Callers never
// touch shared state directly; every mutation goes through an AssetStore and
// is individually atomic.
package registry

import (
	"fieldops/pkg/apperrors"
	"fieldops/pkg/metadata"
	"fieldops/pkg/models"
)

type AssetStore interface {
	// Add validates the request, assigns a new id and persists the record.
	Add(req models.AssetRequest) (*models.Asset, error)
	Get(id int) (*models.Asset, error)
	// List returns a snapshot of all live assets, optionally restricted to
	// one status, ordered by id.
	List(status metadata.Status) ([]models.Asset, error)
	// Update merges only the supplied fields into the existing record.
	Update(id int, upd models.AssetUpdate) (*models.Asset, error)
	// Delete removes the record logically and returns it as it existed
	// immediately before removal.
	Delete(id int) (*models.Asset, error)
	// Transfer moves every listed asset to newLocation as one write that is
	// atomic to concurrent readers. Missing ids fail the whole call.
	Transfer(ids []int, newLocation string) error
}

func validateRequest(req models.AssetRequest) (metadata.Status, error) {
	if req.SerialNumber == "" {
		return "", apperrors.NewValidation("serialNumber is required")
	}
	if req.Name == "" {
		return "", apperrors.NewValidation("name is required")
	}
	if req.Category == "" {
		return "", apperrors.NewValidation("category is required")
	}
	if req.Location == "" {
		return "", apperrors.NewValidation("location is required")
	}
	status, err := metadata.NewStatus(req.Status)
	if err != nil {
		return "", apperrors.NewValidation("%v", err)
	}
	return status, nil
}
