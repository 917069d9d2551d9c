package services

import (
	"github.com/robfig/cron/v3"

	"cartshare/internal/domain"
	"cartshare/pkg/logger"
)

// StatsReporter logs registry occupancy once a minute so operators can
// watch room churn without a metrics stack.
type StatsReporter struct {
	registry domain.ConnectionRegistry
	cron     *cron.Cron
	log      logger.Logger
}

func NewStatsReporter(registry domain.ConnectionRegistry, log logger.Logger) *StatsReporter {
	return &StatsReporter{
		registry: registry,
		cron:     cron.New(),
		log:      log,
	}
}

func (r *StatsReporter) Start() error {
	_, err := r.cron.AddFunc("@every 1m", func() {
		stats := r.registry.Stats()
		r.log.Info("Registry stats",
			"connections", stats.Connections,
			"group_rooms", stats.GroupRooms,
			"list_rooms", stats.ListRooms)
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *StatsReporter) Stop() {
	r.cron.Stop()
}
