package alerter

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/alerter"
	"github.com/admin/tg-bots/shop-bot/internal/ports/service"
)

// повторный алерт с тем же текстом внутри окна не отправляется
const dedupWindow = 10 * time.Minute

// Service прослойка над алерт-клиентом. Гасит дубликаты, чтобы зацикленная
// ошибка не заспамила админский чат.
type Service struct {
	client *alerter.Client

	mu       sync.Mutex
	lastSent map[string]time.Time
}

func New(client *alerter.Client) service.IAlerterService {
	return &Service{
		client:   client,
		lastSent: make(map[string]time.Time),
	}
}

// SendAlert отправляет алерт, если такой же не уходил недавно
func (s *Service) SendAlert(ctx context.Context, message string) error {
	if s.client == nil {
		return errors.New("alerter is not configured")
	}
	if s.recentlySent(message) {
		return nil
	}

	if err := s.client.SendAlert(ctx, message); err != nil {
		return err
	}
	s.markSent(message)
	return nil
}

func (s *Service) recentlySent(message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent, ok := s.lastSent[message]
	return ok && time.Since(sent) < dedupWindow
}

// markSent запоминает алерт и попутно выкидывает устаревшие записи,
// чтобы карта не росла бесконечно
func (s *Service) markSent(message string) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for msg, sent := range s.lastSent {
		if now.Sub(sent) >= dedupWindow {
			delete(s.lastSent, msg)
		}
	}
	s.lastSent[message] = now
}
