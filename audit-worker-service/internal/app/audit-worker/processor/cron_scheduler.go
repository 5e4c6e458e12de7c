package processor

import (
	"context"

	"pinemarket/audit-worker-service/internal/app/audit-worker/service"
	"pinemarket/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler запускает периодическую чистку журнала аудита
type CronScheduler struct {
	cron     *cron.Cron
	auditSvc service.AuditServiceInterface
}

func NewCronScheduler(auditSvc service.AuditServiceInterface) *CronScheduler {
	return &CronScheduler{
		cron:     cron.New(),
		auditSvc: auditSvc,
	}
}

// Start регистрирует задачу чистки по расписанию и запускает планировщик.
// Первая чистка выполняется сразу: после долгого простоя сервиса
// журнал мог накопить просроченные записи.
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.auditSvc.PurgeExpired(ctx); err != nil {
			logger.Error().Err(err).Msg("scheduled audit log purge failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	if _, err := s.auditSvc.PurgeExpired(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial audit log purge failed")
	}

	return nil
}

// Stop останавливает планировщик, дожидаясь текущей задачи
func (s *CronScheduler) Stop() {
	logger.Info().Msg("stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
