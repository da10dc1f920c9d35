package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fieldops/pkg/metadata"
	"fieldops/pkg/models"
)

func testAssets() []models.Asset {
	return []models.Asset{
		{ID: 1, SerialNumber: "SN-100", Name: "Generator", Category: "power", Location: "Yard1", Status: metadata.StatusActive},
		{ID: 2, SerialNumber: "SN-200", Name: "Pump", Category: "pumps", Location: "Yard2", Status: metadata.StatusDowned},
		{ID: 3, SerialNumber: "SN-300", Name: "Generator", Category: "power", Location: "Yard1", Status: metadata.StatusActive},
		{ID: 4, SerialNumber: "GEN-400", Name: "Compressor", Category: "air", Location: "Yard3", Status: metadata.StatusInTransit},
		{ID: 5, SerialNumber: "SN-500", Name: "Light Tower", Category: "power", Location: "Yard2", Status: metadata.StatusRetired},
	}
}

func TestFilterByStatusExactly(t *testing.T) {
	assets := testAssets()

	active := Filter(assets, models.ListQuery{Status: "active"})
	assert.Len(t, active, 2)
	for _, asset := range active {
		assert.Equal(t, metadata.StatusActive, asset.Status)
	}

	none := Filter(assets, models.ListQuery{Status: "downed", Location: "Yard1"})
	assert.Empty(t, none)
}

func TestFilterByExactMatchPredicates(t *testing.T) {
	assets := testAssets()

	assert.Len(t, Filter(assets, models.ListQuery{ID: 3}), 1)
	assert.Len(t, Filter(assets, models.ListQuery{SerialNumber: "SN-200"}), 1)
	assert.Len(t, Filter(assets, models.ListQuery{Name: "Generator"}), 2)
	assert.Len(t, Filter(assets, models.ListQuery{Category: "power"}), 3)
	assert.Len(t, Filter(assets, models.ListQuery{Location: "Yard2"}), 2)
}

func TestSearchMatchesNameAndSerial(t *testing.T) {
	assets := testAssets()

	byName := Filter(assets, models.ListQuery{Search: "gen"})
	// "gen" hits the two Generators by name and GEN-400 by serial
	assert.Len(t, byName, 3)

	bySerial := Filter(assets, models.ListQuery{Search: "sn-2"})
	assert.Len(t, bySerial, 1)
	assert.Equal(t, 2, bySerial[0].ID)
}

func TestSortBreaksTiesByID(t *testing.T) {
	assets := testAssets()

	byName := Sort(assets, "name", false)
	// the two Generators tie on name; id ascending decides
	assert.Equal(t, []int{4, 1, 3, 5, 2}, ids(byName))

	byNameDesc := Sort(assets, "name", true)
	assert.Equal(t, []int{2, 5, 1, 3, 4}, ids(byNameDesc))

	// input slice is untouched
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(assets))
}

func TestSortUnknownKeyFallsBackToID(t *testing.T) {
	shuffled := []models.Asset{{ID: 3}, {ID: 1}, {ID: 2}}
	assert.Equal(t, []int{1, 2, 3}, ids(Sort(shuffled, "nonsense", false)))
}

func TestPaginateTotalPages(t *testing.T) {
	assets := testAssets()

	_, totalPages := Paginate(assets, 1, 2)
	assert.Equal(t, 3, totalPages)

	_, totalPages = Paginate(assets, 1, 5)
	assert.Equal(t, 1, totalPages)

	_, totalPages = Paginate(assets, 1, 4)
	assert.Equal(t, 2, totalPages)

	all, totalPages := Paginate(assets, 0, 0)
	assert.Equal(t, 1, totalPages)
	assert.Len(t, all, 5)
}

func TestPaginationReproducesSequence(t *testing.T) {
	sorted := Sort(testAssets(), "serialNumber", false)

	var concatenated []models.Asset
	page := 1
	for {
		slice, totalPages := Paginate(sorted, page, 2)
		concatenated = append(concatenated, slice...)
		if page >= totalPages {
			break
		}
		page++
	}

	assert.Equal(t, sorted, concatenated)
}

func TestPaginateOutOfRangePage(t *testing.T) {
	slice, totalPages := Paginate(testAssets(), 9, 2)
	assert.Empty(t, slice)
	assert.Equal(t, 3, totalPages)
}

func TestApplyPipeline(t *testing.T) {
	page, totalPages := Apply(testAssets(), models.ListQuery{
		Category: "power",
		SortBy:   "name",
		Page:     1,
		PageSize: 2,
	})
	assert.Equal(t, 2, totalPages)
	assert.Equal(t, []int{1, 3}, ids(page))
}

func ids(assets []models.Asset) []int {
	result := make([]int, len(assets))
	for i, asset := range assets {
		result[i] = asset.ID
	}
	return result
}
