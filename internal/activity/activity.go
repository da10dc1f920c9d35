// Package activity is the append-only history of every mutation. Entries are
// written synchronously inside the operation that performed the change and
// are never updated or removed; no such methods exist here by design.
package activity

import "fieldops/pkg/models"

type Logger interface {
	// Record stamps the entry with an id and timestamp and appends it.
	Record(entry models.ActivityEntry) (*models.ActivityEntry, error)
	// Query returns matching entries in insertion order, which coincides
	// with ascending timestamp order.
	Query(filter models.ActivityFilter) ([]models.ActivityEntry, error)
}
