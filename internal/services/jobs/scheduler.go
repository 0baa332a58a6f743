package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/ports/jobs"
	"github.com/admin/tg-bots/shop-bot/internal/ports/service"
)

// лестница повторов между неудачными попытками одной джобы
var retrySchedule = []time.Duration{time.Minute, 10 * time.Minute, 30 * time.Minute}

// Scheduler гоняет периодические джобы магазина: сверку платежей и закрытие
// просроченных заказов. Каждая джоба крутится в своей горутине и сама
// назначает следующий тик через NextRun
type Scheduler struct {
	alerts service.IAlerterService
	log    *slog.Logger

	jobs []jobs.Job
}

// NewScheduler создаёт пустой планировщик; джобы добавляются через Register
func NewScheduler(log *slog.Logger, alerts service.IAlerterService) *Scheduler {
	return &Scheduler{alerts: alerts, log: log}
}

// Register добавляет джобу в планировщик до Start
func (s *Scheduler) Register(job jobs.Job) {
	s.jobs = append(s.jobs, job)
	s.log.Debug("job registered", "job", job.Name(), "total", len(s.jobs))
}

// Start запускает по горутине на каждую зарегистрированную джобу.
// Сам не блокирует; горутины живут до отмены контекста
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.jobs) == 0 {
		s.log.Warn("no jobs registered, scheduler is idle")
		return nil
	}

	s.log.Info("job scheduler started", "jobs", len(s.jobs))
	for _, job := range s.jobs {
		go s.loop(ctx, job)
	}
	return nil
}

// loop цикл одной джобы: ждём тика по NextRun, выполняем с ретраями,
// повторяем до отмены контекста
func (s *Scheduler) loop(ctx context.Context, job jobs.Job) {
	name := job.Name()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("job loop stopped", "job", name)
			return
		case <-time.After(time.Until(job.NextRun(time.Now()))):
		}

		attempts := s.runWithRetries(ctx, job, name)
		switch {
		case ctx.Err() != nil:
			s.log.Info("job loop stopped", "job", name)
			return
		case len(attempts) > len(retrySchedule):
			s.log.Error("job retries exhausted", "job", name, "attempts", len(attempts))
			s.alertFinalFailure(ctx, name, attempts)
		default:
			s.log.Info("job executed", "job", name, "attempts", len(attempts)+1)
		}
	}
}

// runWithRetries выполняет джобу, повторяя по retrySchedule при ошибках.
// Возвращает ошибки неудачных попыток; пустой срез означает успех с первого раза,
// срез длиннее retrySchedule означает, что не удалась ни одна попытка
func (s *Scheduler) runWithRetries(ctx context.Context, job jobs.Job, name string) []error {
	var attemptErrors []error

	for attempt := 1; attempt <= 1+len(retrySchedule); attempt++ {
		err := job.Run(ctx)
		if err == nil {
			return attemptErrors
		}

		attemptErrors = append(attemptErrors, err)
		if attempt > len(retrySchedule) {
			break
		}

		delay := retrySchedule[attempt-1]
		s.log.Warn("job attempt failed, will retry",
			"job", name,
			"attempt", attempt,
			"retry_in", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return attemptErrors
		case <-time.After(delay):
		}
	}

	return attemptErrors
}

// alertFinalFailure отправляет админам сводку ошибок всех попыток
func (s *Scheduler) alertFinalFailure(ctx context.Context, name string, attemptErrors []error) {
	if s.alerts == nil {
		return
	}

	var b strings.Builder
	b.WriteString("⚠️ Финальная ошибка планировщика, ретраи исчерпаны\n\n")
	b.WriteString(fmt.Sprintf("Джоба: %s\n\nОшибки попыток:\n", name))
	for i, err := range attemptErrors {
		b.WriteString(fmt.Sprintf("Попытка %d: %s\n", i+1, err.Error()))
	}

	if err := s.alerts.SendAlert(ctx, b.String()); err != nil {
		s.log.Warn("job failure alert not delivered", "job", name, "error", err)
	}
}
