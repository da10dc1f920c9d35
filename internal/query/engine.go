// Package query filters, sorts and paginates asset snapshots for listing
// endpoints. Everything here is a pure function of its inputs.
package query

import (
	"sort"
	"strings"

	"fieldops/pkg/models"
)

// Apply runs the full filter/sort/paginate pipeline and returns the
// requested page plus the total page count for the filtered set.
func Apply(assets []models.Asset, q models.ListQuery) ([]models.Asset, int) {
	filtered := Filter(assets, q)
	sorted := Sort(filtered, q.SortBy, q.Descending)
	return Paginate(sorted, q.Page, q.PageSize)
}

// Filter keeps assets matching every exact-match predicate plus the
// free-text search over name and serial number.
func Filter(assets []models.Asset, q models.ListQuery) []models.Asset {
	result := make([]models.Asset, 0, len(assets))
	search := strings.ToLower(q.Search)
	for _, asset := range assets {
		if q.ID != 0 && asset.ID != q.ID {
			continue
		}
		if q.SerialNumber != "" && asset.SerialNumber != q.SerialNumber {
			continue
		}
		if q.Name != "" && asset.Name != q.Name {
			continue
		}
		if q.Category != "" && asset.Category != q.Category {
			continue
		}
		if q.Location != "" && asset.Location != q.Location {
			continue
		}
		if q.Status != "" && string(asset.Status) != q.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(asset.Name), search) &&
			!strings.Contains(strings.ToLower(asset.SerialNumber), search) {
			continue
		}
		result = append(result, asset)
	}
	return result
}

// Sort returns a copy in total order by the given key, ties broken by id
// ascending so the order is deterministic. Unknown keys fall back to id.
func Sort(assets []models.Asset, key string, descending bool) []models.Asset {
	sorted := make([]models.Asset, len(assets))
	copy(sorted, assets)

	less := lessFunc(key)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if descending {
			a, b = b, a
		}
		switch {
		case less(a, b):
			return true
		case less(b, a):
			return false
		default:
			return sorted[i].ID < sorted[j].ID
		}
	})
	return sorted
}

func lessFunc(key string) func(a, b models.Asset) bool {
	switch key {
	case "serialNumber", "serial_number":
		return func(a, b models.Asset) bool { return a.SerialNumber < b.SerialNumber }
	case "name":
		return func(a, b models.Asset) bool { return a.Name < b.Name }
	case "category":
		return func(a, b models.Asset) bool { return a.Category < b.Category }
	case "location":
		return func(a, b models.Asset) bool { return a.Location < b.Location }
	case "status":
		return func(a, b models.Asset) bool { return a.Status < b.Status }
	default:
		return func(a, b models.Asset) bool { return a.ID < b.ID }
	}
}

// Paginate slices out the 1-based page and reports ceil(len/pageSize) total
// pages. A pageSize of zero or less disables pagination.
func Paginate(assets []models.Asset, page, pageSize int) ([]models.Asset, int) {
	if pageSize <= 0 {
		return assets, 1
	}

	totalPages := (len(assets) + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start >= len(assets) {
		return []models.Asset{}, totalPages
	}
	end := start + pageSize
	if end > len(assets) {
		end = len(assets)
	}
	return assets[start:end], totalPages
}
