package activity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"fieldops/internal/repository"
	"fieldops/pkg/apperrors"
	"fieldops/pkg/models"
)

// PostgresLog persists entries in the activity_log table.
type PostgresLog struct {
	repository *repository.Repository
}

func NewPostgresLog(r *repository.Repository) *PostgresLog {
	return &PostgresLog{repository: r}
}

func (l *PostgresLog) Record(entry models.ActivityEntry) (*models.ActivityEntry, error) {
	assetIDsJSON, err := json.Marshal(entry.AssetIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal activity asset ids: %w", err)
	}
	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal activity details: %w", err)
	}

	entry.CreatedAt = time.Now().UTC()
	query := l.repository.GoquDBWrapper.Insert("activity_log").
		Rows(goqu.Record{
			"action":     entry.Action,
			"asset_ids":  assetIDsJSON,
			"actor":      entry.Actor,
			"details":    detailsJSON,
			"created_at": entry.CreatedAt,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&entry.ID); err != nil {
		return nil, apperrors.NewPersistence("failed to insert activity entry", err)
	}

	return &entry, nil
}

func (l *PostgresLog) Query(filter models.ActivityFilter) ([]models.ActivityEntry, error) {
	query := l.repository.GoquDBWrapper.
		From(goqu.T("activity_log").As("a")).
		Select(
			goqu.I("a.id").As("id"),
			goqu.I("a.action").As("action"),
			goqu.I("a.asset_ids").As("asset_ids"),
			goqu.I("a.actor").As("actor"),
			goqu.I("a.details").As("details"),
			goqu.I("a.created_at").As("created_at"),
		).
		Order(goqu.I("a.id").Asc())

	if filter.Action != "" {
		query = query.Where(goqu.Ex{"a.action": filter.Action})
	}
	if filter.Actor != "" {
		query = query.Where(goqu.Ex{"a.actor": filter.Actor})
	}
	if filter.AssetID != 0 {
		query = query.Where(goqu.L("a.asset_ids @> ?::jsonb", fmt.Sprintf("[%d]", filter.AssetID)))
	}
	if !filter.Since.IsZero() {
		query = query.Where(goqu.I("a.created_at").Gte(filter.Since))
	}

	var entries []models.ActivityEntry
	if err := query.Executor().ScanStructs(&entries); err != nil {
		return nil, apperrors.NewPersistence("error selecting activity entries", err)
	}
	for i := range entries {
		entries[i].LoadFromDB()
	}
	return entries, nil
}
