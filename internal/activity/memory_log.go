package activity

import (
	"sync"
	"time"

	"fieldops/pkg/models"
)

// MemoryLog appends entries to a slice under one mutex. IDs are assigned
// under the same lock as the append, so id order, insertion order and
// timestamp order all coincide.
type MemoryLog struct {
	mu      sync.RWMutex
	entries []models.ActivityEntry
	nextID  int64
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{nextID: 1}
}

func (l *MemoryLog) Record(entry models.ActivityEntry) (*models.ActivityEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.ID = l.nextID
	l.nextID++
	entry.CreatedAt = time.Now().UTC()
	l.entries = append(l.entries, entry)

	recorded := entry
	return &recorded, nil
}

func (l *MemoryLog) Query(filter models.ActivityFilter) ([]models.ActivityEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []models.ActivityEntry
	for _, entry := range l.entries {
		if filter.Matches(entry) {
			result = append(result, entry)
		}
	}
	return result, nil
}
