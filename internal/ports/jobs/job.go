package jobs

import (
	"context"
	"time"
)

// Job периодическая фоновая задача магазина. Планировщик спрашивает NextRun
// после каждого выполнения, поэтому расписание может быть нерегулярным
type Job interface {
	// Name имя для логов и алертов
	Name() string
	// NextRun момент следующего запуска относительно now
	NextRun(now time.Time) time.Time
	Run(ctx context.Context) error
}
