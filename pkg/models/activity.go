package models

import (
	"encoding/json"
	"time"
)

const (
	ActionAssetAdded        = "asset_added"
	ActionAssetUpdated      = "asset_updated"
	ActionAssetDeleted      = "asset_deleted"
	ActionAssetsTransferred = "assets_transferred"
)

type ActivityEntry struct {
	ID          int64                  `json:"id" db:"id"`
	Action      string                 `json:"action" db:"action"`
	AssetIDs    []int                  `json:"assetIds" db:"-"`
	AssetIDsRaw []byte                 `json:"-" db:"asset_ids"`
	Actor       string                 `json:"actor" db:"actor"`
	Details     map[string]interface{} `json:"details" db:"-"`
	DetailsRaw  []byte                 `json:"-" db:"details"`
	CreatedAt   time.Time              `json:"createdAt" db:"created_at"`
}

func (e *ActivityEntry) LoadFromDB() {
	if len(e.AssetIDsRaw) > 0 {
		_ = json.Unmarshal(e.AssetIDsRaw, &e.AssetIDs)
	}
	if len(e.DetailsRaw) > 0 {
		_ = json.Unmarshal(e.DetailsRaw, &e.Details)
	}
}

// References reports whether the entry concerns the given asset.
func (e *ActivityEntry) References(assetID int) bool {
	for _, id := range e.AssetIDs {
		if id == assetID {
			return true
		}
	}
	return false
}

// ActivityFilter restricts a log query. Zero values mean "any".
type ActivityFilter struct {
	Action  string
	AssetID int
	Actor   string
	Since   time.Time
}

func (f ActivityFilter) Matches(entry ActivityEntry) bool {
	if f.Action != "" && entry.Action != f.Action {
		return false
	}
	if f.Actor != "" && entry.Actor != f.Actor {
		return false
	}
	if f.AssetID != 0 && !entry.References(f.AssetID) {
		return false
	}
	if !f.Since.IsZero() && entry.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}
