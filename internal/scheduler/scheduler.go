// Package scheduler logs a daily digest of activity volume, giving operators
// a cheap signal that mutations and their audit trail keep moving together.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fieldops/internal/activity"
	"fieldops/pkg/models"
)

type Scheduler struct {
	cron   *cron.Cron
	log    activity.Logger
	logger *zap.Logger
}

func New(log activity.Logger, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		log:    log,
		logger: logger,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@daily", s.digest); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) digest() {
	entries, err := s.log.Query(models.ActivityFilter{Since: time.Now().Add(-24 * time.Hour)})
	if err != nil {
		s.logger.Error("activity digest query failed", zap.Error(err))
		return
	}

	counts := make(map[string]int)
	for _, entry := range entries {
		counts[entry.Action]++
	}

	s.logger.Info("daily activity digest",
		zap.Int("entries", len(entries)),
		zap.Int(models.ActionAssetAdded, counts[models.ActionAssetAdded]),
		zap.Int(models.ActionAssetUpdated, counts[models.ActionAssetUpdated]),
		zap.Int(models.ActionAssetDeleted, counts[models.ActionAssetDeleted]),
		zap.Int(models.ActionAssetsTransferred, counts[models.ActionAssetsTransferred]),
	)
}
