package registry

import (
	"sort"
	"sync"
	"time"

	"fieldops/pkg/apperrors"
	"fieldops/pkg/metadata"
	"fieldops/pkg/models"
)

// MemoryStore keeps the asset table in process memory behind one mutex, so
// every mutation is atomic and readers always see whole records. It backs
// tests and DATABASE_URL-less development runs.
type MemoryStore struct {
	mu     sync.RWMutex
	assets map[int]models.Asset
	nextID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assets: make(map[int]models.Asset),
		nextID: 1,
	}
}

func (s *MemoryStore) Add(req models.AssetRequest) (*models.Asset, error) {
	status, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.assets {
		if !existing.Deleted && existing.SerialNumber == req.SerialNumber {
			return nil, apperrors.NewConflict("serial number %s is already registered", req.SerialNumber)
		}
	}

	now := time.Now().UTC()
	asset := models.Asset{
		ID:           s.nextID,
		SerialNumber: req.SerialNumber,
		Name:         req.Name,
		Category:     req.Category,
		Location:     req.Location,
		Status:       status,
		Metadata:     req.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.nextID++
	s.assets[asset.ID] = asset.Clone()

	result := asset.Clone()
	return &result, nil
}

func (s *MemoryStore) Get(id int) (*models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	asset, ok := s.assets[id]
	if !ok || asset.Deleted {
		return nil, apperrors.NewNotFound("asset", id)
	}
	result := asset.Clone()
	return &result, nil
}

func (s *MemoryStore) List(status metadata.Status) ([]models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var assets []models.Asset
	for _, asset := range s.assets {
		if asset.Deleted {
			continue
		}
		if status != "" && asset.Status != status {
			continue
		}
		assets = append(assets, asset.Clone())
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	return assets, nil
}

func (s *MemoryStore) Update(id int, upd models.AssetUpdate) (*models.Asset, error) {
	var status metadata.Status
	if upd.Status != nil {
		parsed, err := metadata.NewStatus(*upd.Status)
		if err != nil {
			return nil, apperrors.NewValidation("%v", err)
		}
		status = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.assets[id]
	if !ok || asset.Deleted {
		return nil, apperrors.NewNotFound("asset", id)
	}

	if upd.SerialNumber != nil && *upd.SerialNumber != asset.SerialNumber {
		for _, existing := range s.assets {
			if existing.ID != id && !existing.Deleted && existing.SerialNumber == *upd.SerialNumber {
				return nil, apperrors.NewConflict("serial number %s is already registered", *upd.SerialNumber)
			}
		}
		asset.SerialNumber = *upd.SerialNumber
	}
	if upd.Name != nil {
		asset.Name = *upd.Name
	}
	if upd.Category != nil {
		asset.Category = *upd.Category
	}
	if upd.Location != nil {
		asset.Location = *upd.Location
	}
	if upd.Status != nil {
		asset.Status = status
	}
	if upd.Metadata != nil {
		if asset.Metadata == nil {
			asset.Metadata = make(map[string]string, len(upd.Metadata))
		}
		for k, v := range upd.Metadata {
			asset.Metadata[k] = v
		}
	}
	asset.UpdatedAt = time.Now().UTC()
	s.assets[id] = asset.Clone()

	result := asset.Clone()
	return &result, nil
}

func (s *MemoryStore) Delete(id int) (*models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.assets[id]
	if !ok || asset.Deleted {
		return nil, apperrors.NewNotFound("asset", id)
	}

	prior := asset.Clone()
	asset.Deleted = true
	asset.UpdatedAt = time.Now().UTC()
	s.assets[id] = asset

	return &prior, nil
}

func (s *MemoryStore) Transfer(ids []int, newLocation string) error {
	if newLocation == "" {
		return apperrors.NewValidation("newLocation is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var missing []int
	for _, id := range ids {
		asset, ok := s.assets[id]
		if !ok || asset.Deleted {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewNotFound("asset", missing...)
	}

	now := time.Now().UTC()
	for _, id := range ids {
		asset := s.assets[id]
		asset.Location = newLocation
		asset.UpdatedAt = now
		s.assets[id] = asset
	}
	return nil
}
