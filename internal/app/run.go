package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout    = 5 * time.Second
	webhookDropTimeout = 10 * time.Second
)

// serve поднимает все долгоживущие части магазина и блокируется до
// первой фатальной ошибки или сигнала завершения: HTTP сервер (health,
// webhook), приём обновлений Telegram и планировщик джоб
func (a *App) serve(ctx context.Context, deps *Dependencies) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.serveHTTP(deps) })

	// обновления Telegram: webhook на проде, polling локально и на стендах
	if a.cfg.Telegram.IsWebhookEnabled() {
		a.log.Info("telegram updates mode: webhook",
			"webhook_url", a.cfg.Telegram.WebhookURL,
		)
	} else {
		g.Go(func() error { return a.servePolling(gCtx, deps) })
	}

	// планировщик сам раскладывает джобы по горутинам и не блокирует
	if deps.JobScheduler != nil {
		if err := deps.JobScheduler.Start(gCtx); err != nil {
			a.log.Error("job scheduler start failed", "error", err)
		}
	}

	g.Go(func() error {
		<-gCtx.Done()
		a.shutdown(deps)
		return nil
	})

	if err := g.Wait(); err != nil {
		a.log.Error("service exited with error", "error", err)
		return err
	}
	return nil
}

// serveHTTP блокируется на ListenAndServe; штатное закрытие ошибкой не считается
func (a *App) serveHTTP(deps *Dependencies) error {
	a.log.Info("starting http server",
		"host", a.cfg.Server.Host,
		"port", a.cfg.Server.Port,
	)

	err := deps.HTTPServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// shutdown закрывает внешние ресурсы после сигнала завершения.
// Сначала перестаём принимать HTTP, затем закрываем БД, кэш и producer
func (a *App) shutdown(deps *Dependencies) {
	a.log.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := deps.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.log.Error("http server shutdown failed", "error", err)
	}

	if err := deps.DB.Close(); err != nil {
		a.log.Error("database close failed", "error", err)
	}

	if deps.Cache != nil {
		if err := deps.Cache.Close(); err != nil {
			a.log.Error("cache close failed", "error", err)
		}
	}

	if deps.KafkaProducer != nil {
		if err := deps.KafkaProducer.Close(); err != nil {
			a.log.Error("kafka producer close failed", "error", err)
		}
	}

	a.log.Info("application shutdown completed")
}

// servePolling снимает webhook и запускает long polling
func (a *App) servePolling(ctx context.Context, deps *Dependencies) error {
	if deps.TelegramPoller == nil {
		return errors.New("polling mode without initialized poller")
	}

	dropCtx, cancel := context.WithTimeout(context.Background(), webhookDropTimeout)
	defer cancel()

	if err := deps.TelegramPoller.DeleteWebhook(dropCtx); err != nil {
		// даём Telegram время снять webhook, иначе getUpdates ответит 409
		a.log.Warn("webhook delete failed, starting polling anyway", "error", err)
		time.Sleep(2 * time.Second)
	} else {
		a.log.Info("webhook deleted, starting polling")
	}

	return deps.TelegramPoller.Start(ctx)
}
