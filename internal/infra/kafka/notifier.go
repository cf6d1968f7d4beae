package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
)

const schemaVersion = "1.0"

const (
	eventTypeVerification  = "notification.verification"
	eventTypePasswordReset = "notification.password_reset"
)

// Notifier implements port.Notifier by publishing notification events to
// Kafka. A downstream delivery service turns the events into actual emails,
// so a broker outage degrades delivery without failing the triggering
// operation.
type Notifier struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewNotifier constructs a Kafka-backed Notifier.
func NewNotifier(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *Notifier {
	return &Notifier{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Username  string           `json:"username,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (n *Notifier) publish(ctx context.Context, eventType, username string, payload any) error {
	metadata := envelopeMetadata{
		"service":     n.appCfg.Name,
		"environment": n.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Username:  username,
		Timestamp: time.Now().UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: n.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(username),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case n.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendVerification publishes an email verification notification event.
func (n *Notifier) SendVerification(ctx context.Context, account domain.Account) error {
	payload := struct {
		AccountID string `json:"account_id"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		FirstName string `json:"first_name,omitempty"`
	}{
		AccountID: account.ID,
		Username:  account.Username,
		Email:     account.Email,
		FirstName: account.FirstName,
	}

	return n.publish(ctx, eventTypeVerification, account.Username, payload)
}

// SendPasswordReset publishes a password reset notification event.
func (n *Notifier) SendPasswordReset(ctx context.Context, account domain.Account) error {
	payload := struct {
		AccountID string `json:"account_id"`
		Username  string `json:"username"`
		Email     string `json:"email"`
	}{
		AccountID: account.ID,
		Username:  account.Username,
		Email:     account.Email,
	}

	return n.publish(ctx, eventTypePasswordReset, account.Username, payload)
}

var _ port.Notifier = (*Notifier)(nil)
