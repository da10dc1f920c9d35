package container

import (
	"database/sql"
	"os"
	"time"

	"go.uber.org/zap"

	"fieldops/internal/activity"
	"fieldops/internal/assets"
	"fieldops/internal/registry"
	"fieldops/internal/repository"
	"fieldops/internal/scheduler"
	"fieldops/internal/transfers"
)

const defaultLockTimeout = 5 * time.Second

type Container struct {
	Store        registry.AssetStore
	ActivityLog  activity.Logger
	Locks        *transfers.LockTable
	Coordinator  *transfers.Coordinator
	AssetService *assets.AssetService
	AssetHandler *assets.AssetHandler
	Scheduler    *scheduler.Scheduler
}

// NewAppContainer wires the application. A nil db selects the in-memory
// backends, which keeps development runs working without a database.
func NewAppContainer(db *sql.DB, logger *zap.Logger) *Container {
	var store registry.AssetStore
	var activityLog activity.Logger

	if db != nil {
		repo := repository.NewRepository(db)
		store = registry.NewPostgresStore(repo)
		activityLog = activity.NewPostgresLog(repo)
	} else {
		store = registry.NewMemoryStore()
		activityLog = activity.NewMemoryLog()
	}

	locks := transfers.NewLockTable(lockTimeout())
	coordinator := transfers.NewCoordinator(store, activityLog, locks)
	assetService := assets.NewAssetService(store, activityLog, locks)
	assetHandler := assets.NewAssetHandler(assetService, coordinator, logger)
	digest := scheduler.New(activityLog, logger)

	return &Container{
		Store:        store,
		ActivityLog:  activityLog,
		Locks:        locks,
		Coordinator:  coordinator,
		AssetService: assetService,
		AssetHandler: assetHandler,
		Scheduler:    digest,
	}
}

func lockTimeout() time.Duration {
	if raw := os.Getenv("LOCK_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return defaultLockTimeout
}
