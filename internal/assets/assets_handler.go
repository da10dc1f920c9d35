package assets

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fieldops/internal/query"
	"fieldops/internal/transfers"
	"fieldops/pkg/apperrors"
	"fieldops/pkg/models"
	"fieldops/pkg/security"
)

type AssetHandler struct {
	service     *AssetService
	coordinator *transfers.Coordinator
	logger      *zap.Logger
}

func NewAssetHandler(service *AssetService, coordinator *transfers.Coordinator, logger *zap.Logger) *AssetHandler {
	return &AssetHandler{
		service:     service,
		coordinator: coordinator,
		logger:      logger,
	}
}

func (h *AssetHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/assets", h.ListAssets)
	router.GET("/assets/:id", h.GetAsset)
	router.GET("/assets/:id/history", h.GetAssetHistory)
	router.POST("/assets", h.CreateAsset)
	router.PUT("/assets/:id", h.UpdateAsset)
	router.DELETE("/assets/:id", h.RemoveAsset)
	router.POST("/assets/transfer", h.TransferAssets)
	router.GET("/activity", h.GetActivity)
}

func (h *AssetHandler) ListAssets(c *gin.Context) {
	assets, err := h.service.List()
	if err != nil {
		h.logger.Error("unable to list assets", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to list assets"})
		return
	}

	listQuery := models.ListQuery{
		SerialNumber: c.Query("serialNumber"),
		Name:         c.Query("name"),
		Category:     c.Query("category"),
		Location:     c.Query("location"),
		Status:       c.Query("status"),
		Search:       c.Query("search"),
		SortBy:       c.Query("sort"),
		Descending:   c.Query("dir") == "desc",
	}
	listQuery.Page, _ = strconv.Atoi(c.Query("page"))
	listQuery.PageSize, _ = strconv.Atoi(c.Query("pageSize"))

	page, totalPages := query.Apply(assets, listQuery)

	c.Header("X-Total-Pages", strconv.Itoa(totalPages))
	c.JSON(http.StatusOK, page)
}

func (h *AssetHandler) GetAsset(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Asset ID is required"})
		return
	}

	asset, err := h.service.Get(id)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("unable to get asset", zap.Int("id", id), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get asset"})
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *AssetHandler) GetAssetHistory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Asset ID is required"})
		return
	}

	entries, err := h.service.History(id)
	if err != nil {
		h.logger.Error("unable to get asset history", zap.Int("id", id), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get asset history"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req models.AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	asset, err := h.service.Create(req, security.ActorFromContext(c))
	if err != nil {
		var gap *apperrors.AuditGapError
		if errors.As(err, &gap) {
			h.logger.Error("asset created but activity log write failed",
				zap.Int("id", asset.ID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Asset created but audit trail may be incomplete", "detail": err.Error(), "mutated": true})
			return
		}
		h.logger.Warn("unable to create asset", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "asset": asset})
}

func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Asset ID is required"})
		return
	}

	var upd models.AssetUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	asset, err := h.service.Update(c.Request.Context(), id, upd, security.ActorFromContext(c))
	if err != nil {
		h.respondMutationError(c, err, asset)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "asset": asset})
}

func (h *AssetHandler) RemoveAsset(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Asset ID is required"})
		return
	}

	prior, err := h.service.Delete(c.Request.Context(), id, security.ActorFromContext(c))
	if err != nil {
		h.respondMutationError(c, err, prior)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "asset": prior})
}

func (h *AssetHandler) TransferAssets(c *gin.Context) {
	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	result, err := h.coordinator.BulkTransfer(c.Request.Context(), req, security.ActorFromContext(c))
	if err != nil {
		var validation *apperrors.ValidationError
		var contention *apperrors.ContentionError
		var gap *apperrors.AuditGapError
		switch {
		case errors.As(err, &validation):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &contention):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
		case errors.As(err, &gap):
			h.logger.Error("transfer committed but activity log write failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Assets transferred but audit trail may be incomplete", "detail": err.Error(), "mutated": true})
		default:
			h.logger.Warn("unable to transfer assets", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Unable to transfer assets", "detail": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transferred": result.Transferred,
		"newLocation": result.NewLocation,
	})
}

func (h *AssetHandler) GetActivity(c *gin.Context) {
	filter := models.ActivityFilter{
		Action: c.Query("action"),
		Actor:  c.Query("actor"),
	}
	filter.AssetID, _ = strconv.Atoi(c.Query("assetId"))

	entries, err := h.service.Activity(filter)
	if err != nil {
		h.logger.Error("unable to query activity log", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to query activity log"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// respondMutationError maps single-asset mutation failures. Audit gaps are
// reported with mutated:true so callers can tell a committed change with a
// missing trail apart from "nothing changed".
func (h *AssetHandler) respondMutationError(c *gin.Context, err error, asset *models.Asset) {
	var contention *apperrors.ContentionError
	var gap *apperrors.AuditGapError
	switch {
	case errors.As(err, &contention):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	case errors.As(err, &gap):
		h.logger.Error("mutation committed but activity log write failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"error": "Change applied but audit trail may be incomplete", "detail": err.Error(), "mutated": true, "asset": asset})
	default:
		h.logger.Warn("asset mutation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
