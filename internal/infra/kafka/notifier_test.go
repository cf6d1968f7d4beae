package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestNotifier(t *testing.T) (*Notifier, *fakeAsyncProducer) {
	t.Helper()

	asyncProducer := newFakeAsyncProducer()
	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg:      config.KafkaSettings{TopicPrefix: "accounts"},
		errChan:  make(chan error, 1),
		done:     make(chan struct{}),
	}

	notifier := NewNotifier(producer, config.AppSettings{Name: "accounts-service", Env: "test"}, zaptest.NewLogger(t))
	return notifier, asyncProducer
}

func TestSendVerificationPublishesEnvelope(t *testing.T) {
	notifier, asyncProducer := newTestNotifier(t)

	account := domain.Account{
		ID:        "acc-1",
		Username:  "jdoe",
		Email:     "jdoe@example.com",
		FirstName: "John",
	}

	if err := notifier.SendVerification(context.Background(), account); err != nil {
		t.Fatalf("SendVerification returned error: %v", err)
	}

	var message *sarama.ProducerMessage
	select {
	case message = <-asyncProducer.input:
	case <-time.After(time.Second):
		t.Fatal("no message published")
	}

	if message.Topic != "accounts.notification.verification" {
		t.Fatalf("topic = %q", message.Topic)
	}

	key, err := message.Key.Encode()
	if err != nil {
		t.Fatalf("encode key: %v", err)
	}
	if string(key) != "jdoe" {
		t.Fatalf("key = %q, messages must be keyed by username", key)
	}

	value, err := message.Value.Encode()
	if err != nil {
		t.Fatalf("encode value: %v", err)
	}

	var envelope struct {
		EventID   string `json:"event_id"`
		EventType string `json:"event_type"`
		Username  string `json:"username"`
		Version   string `json:"version"`
		Payload   struct {
			AccountID string `json:"account_id"`
			Email     string `json:"email"`
			FirstName string `json:"first_name"`
		} `json:"payload"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(value, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}

	if envelope.EventID == "" {
		t.Fatal("envelope carries no event id")
	}
	if envelope.EventType != eventTypeVerification {
		t.Fatalf("event_type = %q", envelope.EventType)
	}
	if envelope.Username != "jdoe" {
		t.Fatalf("username = %q", envelope.Username)
	}
	if envelope.Version != schemaVersion {
		t.Fatalf("version = %q", envelope.Version)
	}
	if envelope.Payload.AccountID != "acc-1" || envelope.Payload.Email != "jdoe@example.com" {
		t.Fatalf("unexpected payload: %+v", envelope.Payload)
	}
	if envelope.Metadata["service"] != "accounts-service" || envelope.Metadata["environment"] != "test" {
		t.Fatalf("unexpected metadata: %+v", envelope.Metadata)
	}
}

func TestSendPasswordResetPublishesEnvelope(t *testing.T) {
	notifier, asyncProducer := newTestNotifier(t)

	account := domain.Account{
		ID:       "acc-1",
		Username: "jdoe",
		Email:    "jdoe@example.com",
	}

	if err := notifier.SendPasswordReset(context.Background(), account); err != nil {
		t.Fatalf("SendPasswordReset returned error: %v", err)
	}

	var message *sarama.ProducerMessage
	select {
	case message = <-asyncProducer.input:
	case <-time.After(time.Second):
		t.Fatal("no message published")
	}

	if message.Topic != "accounts.notification.password_reset" {
		t.Fatalf("topic = %q", message.Topic)
	}
}

func TestPublishHonorsContextCancellation(t *testing.T) {
	notifier, asyncProducer := newTestNotifier(t)

	// Fill the buffered input channel so the next publish blocks.
	asyncProducer.input <- &sarama.ProducerMessage{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := notifier.SendVerification(ctx, domain.Account{Username: "jdoe"})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestTopicNamePrefixing(t *testing.T) {
	producer := &Producer{cfg: config.KafkaSettings{TopicPrefix: "accounts"}}

	if got := producer.TopicName("notification.verification"); got != "accounts.notification.verification" {
		t.Fatalf("TopicName = %q", got)
	}
	if got := producer.TopicName("accounts.notification.verification"); got != "accounts.notification.verification" {
		t.Fatalf("already-prefixed TopicName = %q", got)
	}

	bare := &Producer{cfg: config.KafkaSettings{}}
	if got := bare.TopicName("notification.verification"); got != "notification.verification" {
		t.Fatalf("unprefixed TopicName = %q", got)
	}
}
