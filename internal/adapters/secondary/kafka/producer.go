package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/admin/tg-bots/shop-bot/internal/domain"
)

// Producer пишет события заказов в Kafka через синхронный sarama-producer
type Producer struct {
	sync  sarama.SyncProducer
	topic string
	log   *slog.Logger
}

// NewProducer подключается к брокерам и создаёт producer
func NewProducer(cfg *Config, log *slog.Logger) (*Producer, error) {
	sp, err := sarama.NewSyncProducer(cfg.GetBrokers(), newSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	log.Info("kafka producer ready",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
	)

	return &Producer{
		sync:  sp,
		topic: cfg.Topic,
		log:   log,
	}, nil
}

// newSaramaConfig собирает настройки клиента: синхронная запись с подтверждением
// от всех реплик, SASL при соответствующем протоколе
func newSaramaConfig(cfg *Config) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 5

	switch cfg.SecurityProtocol {
	case "SASL_SSL", "SASL_PLAINTEXT":
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User = cfg.SASLUsername
		sc.Net.SASL.Password = cfg.SASLPassword
		sc.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		if cfg.SASLMechanism == "SCRAM-SHA-256" {
			sc.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		}
		sc.Net.TLS.Enable = cfg.SecurityProtocol == "SASL_SSL"
	}

	return sc
}

// orderEventPayload тело события жизненного цикла заказа
type orderEventPayload struct {
	Event       string `json:"event"` // order.paid, order.expired, order.cancelled
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	ProductID   int64  `json:"product_id"`
	Quantity    int    `json:"quantity"`
	TotalAmount string `json:"total_amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	TrackID     string `json:"track_id,omitempty"`
	ChargeID    string `json:"charge_id,omitempty"`
	OccurredAt  string `json:"occurred_at"` // RFC3339
}

// SendOrderEvent отправляет событие жизненного цикла заказа.
// Ключ сообщения - public_id заказа, чтобы события одного заказа попадали в одну партицию
func (p *Producer) SendOrderEvent(ctx context.Context, order *domain.Order, event string) error {
	payload := orderEventPayload{
		Event:       event,
		OrderID:     order.PublicID.String(),
		UserID:      order.UserID.String(),
		ProductID:   order.ProductID,
		Quantity:    order.Quantity,
		TotalAmount: order.TotalAmount.String(),
		Currency:    order.Currency,
		Status:      order.Status.String(),
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if order.TrackID != nil {
		payload.TrackID = *order.TrackID
	}
	if order.ChargeID != nil {
		payload.ChargeID = *order.ChargeID
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	headers := []sarama.RecordHeader{
		{Key: []byte("event"), Value: []byte(event)},
		{Key: []byte("order_id"), Value: []byte(payload.OrderID)},
		{Key: []byte("user_id"), Value: []byte(payload.UserID)},
	}

	if err := p.publish(payload.OrderID, value, headers); err != nil {
		return fmt.Errorf("order event %s: %w", event, err)
	}
	return nil
}

// publish синхронно пишет сообщение в топик
func (p *Producer) publish(key string, value []byte, headers []sarama.RecordHeader) error {
	partition, offset, err := p.sync.SendMessage(&sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(value),
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("produce to %s [key=%s]: %w", p.topic, key, err)
	}

	p.log.Debug("kafka message produced",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"key", key,
	)
	return nil
}

func (p *Producer) Close() error {
	if err := p.sync.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	p.log.Info("kafka producer stopped")
	return nil
}
