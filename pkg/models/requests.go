package models

// AssetRequest carries the fields for creating an asset. All of them except
// Metadata are required.
type AssetRequest struct {
	SerialNumber string            `json:"serialNumber"`
	Name         string            `json:"name"`
	Category     string            `json:"category"`
	Location     string            `json:"location"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata"`
}

// AssetUpdate is a partial update; nil fields are left untouched. Metadata
// keys present in the map are merged over the existing ones.
type AssetUpdate struct {
	SerialNumber *string           `json:"serialNumber"`
	Name         *string           `json:"name"`
	Category     *string           `json:"category"`
	Location     *string           `json:"location"`
	Status       *string           `json:"status"`
	Metadata     map[string]string `json:"metadata"`
}

type TransferRequest struct {
	AssetIDs    []int  `json:"assetIds"`
	NewLocation string `json:"newLocation"`
}

type TransferResult struct {
	Transferred int    `json:"transferred"`
	NewLocation string `json:"newLocation"`
}

// ListQuery describes the filtering, sorting and paging the query engine
// answers. Zero values mean "no restriction"; Page is 1-based.
type ListQuery struct {
	ID           int
	SerialNumber string
	Name         string
	Category     string
	Location     string
	Status       string
	Search       string
	SortBy       string
	Descending   bool
	Page         int
	PageSize     int
}
