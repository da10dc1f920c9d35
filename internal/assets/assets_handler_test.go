package assets

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"fieldops/internal/activity"
	"fieldops/internal/registry"
	"fieldops/internal/transfers"
	"fieldops/pkg/models"
	"fieldops/pkg/security"
)

func newTestRouter(t *testing.T) (*gin.Engine, *activity.MemoryLog) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := registry.NewMemoryStore()
	log := activity.NewMemoryLog()
	locks := transfers.NewLockTable(2 * time.Second)
	service := NewAssetService(store, log, locks)
	coordinator := transfers.NewCoordinator(store, log, locks)
	handler := NewAssetHandler(service, coordinator, zap.NewNop())

	router := gin.New()
	router.Use(security.ActorMiddleware())
	handler.RegisterRoutes(router)
	return router, log
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor", "alice")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createTestAsset(t *testing.T, router *gin.Engine, serial string) int {
	t.Helper()
	w := performJSON(router, http.MethodPost, "/assets", models.AssetRequest{
		SerialNumber: serial,
		Name:         "Generator",
		Category:     "power",
		Location:     "Yard1",
		Status:       "active",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool         `json:"success"`
		Asset   models.Asset `json:"asset"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	return resp.Asset.ID
}

func TestCreateAssetEndpoint(t *testing.T) {
	router, log := newTestRouter(t)

	id := createTestAsset(t, router, "SN-001")
	assert.Equal(t, 1, id)

	entries, _ := log.Query(models.ActivityFilter{Action: models.ActionAssetAdded})
	assert.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Actor)
}

func TestCreateAssetEndpointErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	// malformed body
	req := httptest.NewRequest(http.MethodPost, "/assets", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// missing required field
	w = performJSON(router, http.MethodPost, "/assets", models.AssetRequest{Name: "no serial"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "serialNumber")

	// duplicate serial
	createTestAsset(t, router, "SN-001")
	w = performJSON(router, http.MethodPost, "/assets", models.AssetRequest{
		SerialNumber: "SN-001",
		Name:         "Generator",
		Category:     "power",
		Location:     "Yard1",
		Status:       "active",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "already registered")
}

func TestListAssetsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	createTestAsset(t, router, "SN-001")
	createTestAsset(t, router, "SN-002")

	w := performJSON(router, http.MethodGet, "/assets", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var assets []models.Asset
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &assets))
	assert.Len(t, assets, 2)

	w = performJSON(router, http.MethodGet, "/assets?status=downed", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &assets))
	assert.Empty(t, assets)
}

func TestListAssetsPaginationHeaders(t *testing.T) {
	router, _ := newTestRouter(t)
	createTestAsset(t, router, "SN-001")
	createTestAsset(t, router, "SN-002")
	createTestAsset(t, router, "SN-003")

	w := performJSON(router, http.MethodGet, "/assets?page=2&pageSize=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Total-Pages"))

	var assets []models.Asset
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &assets))
	assert.Len(t, assets, 1)
}

func TestGetAssetEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createTestAsset(t, router, "SN-001")

	w := performJSON(router, http.MethodGet, "/assets/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var asset models.Asset
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &asset))
	assert.Equal(t, id, asset.ID)

	w = performJSON(router, http.MethodGet, "/assets/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAssetEndpoint(t *testing.T) {
	router, log := newTestRouter(t)
	createTestAsset(t, router, "SN-001")

	w := performJSON(router, http.MethodPut, "/assets/1", map[string]interface{}{"location": "Yard2"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	entries, _ := log.Query(models.ActivityFilter{Action: models.ActionAssetUpdated})
	assert.Len(t, entries, 1)

	// absent asset per the wire contract maps to 500
	w = performJSON(router, http.MethodPut, "/assets/99", map[string]interface{}{"location": "Yard2"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// invalid status value
	w = performJSON(router, http.MethodPut, "/assets/1", map[string]interface{}{"status": "exploded"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDeleteAssetEndpoint(t *testing.T) {
	router, log := newTestRouter(t)
	createTestAsset(t, router, "SN-001")

	w := performJSON(router, http.MethodDelete, "/assets/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	// the response carries the record as it existed before removal
	assert.Contains(t, w.Body.String(), "SN-001")

	entries, _ := log.Query(models.ActivityFilter{Action: models.ActionAssetDeleted})
	assert.Len(t, entries, 1)

	w = performJSON(router, http.MethodDelete, "/assets/1", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTransferEndpoint(t *testing.T) {
	router, log := newTestRouter(t)
	createTestAsset(t, router, "SN-001")
	createTestAsset(t, router, "SN-002")

	w := performJSON(router, http.MethodPost, "/assets/transfer",
		models.TransferRequest{AssetIDs: []int{1, 2}, NewLocation: "Yard2"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"transferred":2`)

	entries, _ := log.Query(models.ActivityFilter{Action: models.ActionAssetsTransferred})
	assert.Len(t, entries, 1)
}

func TestTransferEndpointValidation(t *testing.T) {
	router, _ := newTestRouter(t)
	createTestAsset(t, router, "SN-001")

	w := performJSON(router, http.MethodPost, "/assets/transfer",
		models.TransferRequest{AssetIDs: nil, NewLocation: "Yard2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(router, http.MethodPost, "/assets/transfer",
		models.TransferRequest{AssetIDs: []int{1}, NewLocation: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransferEndpointMissingAsset(t *testing.T) {
	router, log := newTestRouter(t)
	createTestAsset(t, router, "SN-001")

	w := performJSON(router, http.MethodPost, "/assets/transfer",
		models.TransferRequest{AssetIDs: []int{1, 3}, NewLocation: "Yard3"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "3")

	// nothing moved, nothing logged
	getW := performJSON(router, http.MethodGet, "/assets/1", nil)
	var asset models.Asset
	assert.NoError(t, json.Unmarshal(getW.Body.Bytes(), &asset))
	assert.Equal(t, "Yard1", asset.Location)

	entries, _ := log.Query(models.ActivityFilter{Action: models.ActionAssetsTransferred})
	assert.Empty(t, entries)
}

func TestAssetHistoryEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	createTestAsset(t, router, "SN-001")
	performJSON(router, http.MethodPut, "/assets/1", map[string]interface{}{"location": "Yard2"})

	w := performJSON(router, http.MethodGet, "/assets/1/history", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var entries []models.ActivityEntry
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)
}

func TestActivityEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	createTestAsset(t, router, "SN-001")
	createTestAsset(t, router, "SN-002")

	w := performJSON(router, http.MethodGet, "/activity?action=asset_added", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var entries []models.ActivityEntry
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].Actor)
}
