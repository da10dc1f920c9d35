package models

import (
	"encoding/json"
	"fmt"
	"time"

	"fieldops/pkg/metadata"
)

type Asset struct {
	ID           int               `json:"id" db:"id"`
	SerialNumber string            `json:"serialNumber" db:"serial_number"`
	Name         string            `json:"name" db:"name"`
	Category     string            `json:"category" db:"category"`
	Location     string            `json:"location" db:"location"`
	Status       metadata.Status   `json:"status" db:"status"`
	Metadata     map[string]string `json:"metadata,omitempty" db:"-"`
	CreatedAt    time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time         `json:"updatedAt" db:"updated_at"`
	Deleted      bool              `json:"-" db:"deleted"`
}

// Clone returns a copy that shares no mutable state with the receiver, so
// snapshots handed to callers stay stable while the store keeps mutating.
func (a *Asset) Clone() Asset {
	clone := *a
	if a.Metadata != nil {
		clone.Metadata = make(map[string]string, len(a.Metadata))
		for k, v := range a.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}

// FlatAssetRecord is the row shape scanned from postgres; metadata arrives as
// raw jsonb.
type FlatAssetRecord struct {
	ID           int       `db:"id"`
	SerialNumber string    `db:"serial_number"`
	Name         string    `db:"name"`
	Category     string    `db:"category"`
	Location     string    `db:"location"`
	Status       string    `db:"status"`
	Metadata     []byte    `db:"metadata"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	Deleted      bool      `db:"deleted"`
}

func (fa *FlatAssetRecord) TransformToAsset() (Asset, error) {
	asset := Asset{
		ID:           fa.ID,
		SerialNumber: fa.SerialNumber,
		Name:         fa.Name,
		Category:     fa.Category,
		Location:     fa.Location,
		Status:       metadata.Status(fa.Status),
		CreatedAt:    fa.CreatedAt,
		UpdatedAt:    fa.UpdatedAt,
		Deleted:      fa.Deleted,
	}
	if len(fa.Metadata) > 0 {
		if err := json.Unmarshal(fa.Metadata, &asset.Metadata); err != nil {
			return Asset{}, fmt.Errorf("failed to unmarshal asset metadata: %w", err)
		}
	}
	return asset, nil
}
