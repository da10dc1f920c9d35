package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"fieldops/internal/repository"
	"fieldops/pkg/apperrors"
	"fieldops/pkg/metadata"
	"fieldops/pkg/models"
)

// PostgresStore persists assets in the assets table. Serial uniqueness among
// live rows is enforced by a partial unique index; deletion is logical so
// activity log entries stay readable after an asset is gone.
type PostgresStore struct {
	repository *repository.Repository
}

func NewPostgresStore(r *repository.Repository) *PostgresStore {
	return &PostgresStore{repository: r}
}

func (s *PostgresStore) Add(req models.AssetRequest) (*models.Asset, error) {
	status, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	metadataJSON, err := json.Marshal(req.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal asset metadata: %w", err)
	}
	if req.Metadata == nil {
		metadataJSON = []byte("{}")
	}

	now := time.Now().UTC()
	asset := models.Asset{
		SerialNumber: req.SerialNumber,
		Name:         req.Name,
		Category:     req.Category,
		Location:     req.Location,
		Status:       status,
		Metadata:     req.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := s.repository.GoquDBWrapper.Insert("assets").
		Rows(goqu.Record{
			"serial_number": asset.SerialNumber,
			"name":          asset.Name,
			"category":      asset.Category,
			"location":      asset.Location,
			"status":        string(asset.Status),
			"metadata":      metadataJSON,
			"created_at":    asset.CreatedAt,
			"updated_at":    asset.UpdatedAt,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&asset.ID); err != nil {
		return nil, apperrors.WrapDBError(fmt.Sprintf("serial number %s", req.SerialNumber), err)
	}

	return &asset, nil
}

func (s *PostgresStore) Get(id int) (*models.Asset, error) {
	return s.fetchByCondition(goqu.Ex{"id": id, "deleted": false}, id)
}

func (s *PostgresStore) List(status metadata.Status) ([]models.Asset, error) {
	conditions := goqu.Ex{"deleted": false}
	if status != "" {
		conditions["status"] = string(status)
	}

	query := s.repository.GoquDBWrapper.
		From("assets").
		Where(conditions).
		Order(goqu.I("id").Asc())

	var flatAssets []models.FlatAssetRecord
	if err := query.Executor().ScanStructs(&flatAssets); err != nil {
		return nil, apperrors.NewPersistence("unable to select assets", err)
	}

	var assets []models.Asset
	for _, flat := range flatAssets {
		asset, err := flat.TransformToAsset()
		if err != nil {
			return nil, apperrors.NewPersistence("unable to read asset row", err)
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func (s *PostgresStore) Update(id int, upd models.AssetUpdate) (*models.Asset, error) {
	if upd.Status != nil {
		if _, err := metadata.NewStatus(*upd.Status); err != nil {
			return nil, apperrors.NewValidation("%v", err)
		}
	}

	var updated *models.Asset
	err := repository.WithTransaction(s.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		current, err := fetchByConditionIn(tx, goqu.Ex{"id": id, "deleted": false}, id)
		if err != nil {
			return err
		}

		record := goqu.Record{"updated_at": time.Now().UTC()}
		if upd.SerialNumber != nil {
			record["serial_number"] = *upd.SerialNumber
			current.SerialNumber = *upd.SerialNumber
		}
		if upd.Name != nil {
			record["name"] = *upd.Name
			current.Name = *upd.Name
		}
		if upd.Category != nil {
			record["category"] = *upd.Category
			current.Category = *upd.Category
		}
		if upd.Location != nil {
			record["location"] = *upd.Location
			current.Location = *upd.Location
		}
		if upd.Status != nil {
			record["status"] = *upd.Status
			current.Status = metadata.Status(*upd.Status)
		}
		if upd.Metadata != nil {
			if current.Metadata == nil {
				current.Metadata = make(map[string]string, len(upd.Metadata))
			}
			for k, v := range upd.Metadata {
				current.Metadata[k] = v
			}
			metadataJSON, err := json.Marshal(current.Metadata)
			if err != nil {
				return fmt.Errorf("failed to marshal asset metadata: %w", err)
			}
			record["metadata"] = metadataJSON
		}

		_, err = tx.Update("assets").
			Set(record).
			Where(goqu.Ex{"id": id}).
			Executor().
			Exec()
		if err != nil {
			return apperrors.WrapDBError(fmt.Sprintf("asset %d", id), err)
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PostgresStore) Delete(id int) (*models.Asset, error) {
	var prior *models.Asset
	err := repository.WithTransaction(s.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		current, err := fetchByConditionIn(tx, goqu.Ex{"id": id, "deleted": false}, id)
		if err != nil {
			return err
		}

		_, err = tx.Update("assets").
			Set(goqu.Record{"deleted": true, "updated_at": time.Now().UTC()}).
			Where(goqu.Ex{"id": id}).
			Executor().
			Exec()
		if err != nil {
			return apperrors.WrapDBError(fmt.Sprintf("asset %d", id), err)
		}

		prior = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prior, nil
}

func (s *PostgresStore) Transfer(ids []int, newLocation string) error {
	if newLocation == "" {
		return apperrors.NewValidation("newLocation is required")
	}

	return repository.WithTransaction(s.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		var foundIDs []int
		err := tx.Select("id").
			From("assets").
			Where(goqu.Ex{"id": ids, "deleted": false}).
			Executor().
			ScanVals(&foundIDs)
		if err != nil {
			return apperrors.NewPersistence("unable to resolve transfer batch", err)
		}

		if len(foundIDs) != len(ids) {
			found := make(map[int]bool, len(foundIDs))
			for _, id := range foundIDs {
				found[id] = true
			}
			var missing []int
			for _, id := range ids {
				if !found[id] {
					missing = append(missing, id)
				}
			}
			return apperrors.NewNotFound("asset", missing...)
		}

		result, err := tx.Update("assets").
			Set(goqu.Record{"location": newLocation, "updated_at": time.Now().UTC()}).
			Where(goqu.Ex{"id": ids, "deleted": false}).
			Executor().
			Exec()
		if err != nil {
			return apperrors.WrapDBError("transfer batch", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return apperrors.NewPersistence("failed to get rows affected", err)
		}
		if int(rowsAffected) != len(ids) {
			return apperrors.NewPersistence(
				fmt.Sprintf("expected to move %d assets, moved %d", len(ids), rowsAffected), nil)
		}
		return nil
	})
}

func (s *PostgresStore) fetchByCondition(condition goqu.Expression, id int) (*models.Asset, error) {
	query := s.repository.GoquDBWrapper.From("assets").Where(condition)

	var flat models.FlatAssetRecord
	found, err := query.Executor().ScanStruct(&flat)
	if err != nil {
		return nil, apperrors.NewPersistence("unable to select asset", err)
	}
	if !found {
		return nil, apperrors.NewNotFound("asset", id)
	}

	asset, err := flat.TransformToAsset()
	if err != nil {
		return nil, apperrors.NewPersistence("unable to read asset row", err)
	}
	return &asset, nil
}

func fetchByConditionIn(tx *goqu.TxDatabase, condition goqu.Expression, id int) (*models.Asset, error) {
	var flat models.FlatAssetRecord
	found, err := tx.From("assets").Where(condition).Executor().ScanStruct(&flat)
	if err != nil {
		return nil, apperrors.NewPersistence("unable to select asset", err)
	}
	if !found {
		return nil, apperrors.NewNotFound("asset", id)
	}

	asset, err := flat.TransformToAsset()
	if err != nil {
		return nil, apperrors.NewPersistence("unable to read asset row", err)
	}
	return &asset, nil
}
