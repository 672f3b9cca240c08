//go:build integration

package audit_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycgate/internal/audit"
	"kycgate/internal/platform/kafka"
	"kycgate/internal/platform/kafka/consumer"
	"kycgate/internal/platform/kafka/producer"
	"kycgate/pkg/testutil/containers"
)

type KafkaStoreIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaBroker
	producer *producer.Producer
}

func TestKafkaStoreIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaStoreIntegrationSuite))
}

func (s *KafkaStoreIntegrationSuite) SetupSuite() {
	s.kafka = containers.Kafka(s.T())

	cfg := kafka.DefaultProducerConfig(s.kafka.Brokers)
	cfg.DeliveryTimeout = 10 * time.Second
	prod, err := producer.New(cfg, slog.Default())
	s.Require().NoError(err)
	s.producer = prod
}

func (s *KafkaStoreIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close() //nolint:errcheck
	}
}

// Events emitted through the async publisher arrive on the topic and decode
// back to the same event.
func (s *KafkaStoreIntegrationSuite) TestPublisherRoundTrip() {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()
	topic := "kyc.audit.roundtrip"
	s.Require().NoError(s.kafka.CreateTopic(ctx, topic))

	publisher := audit.NewPublisher(audit.NewKafkaStore(s.producer, topic),
		audit.WithAsyncBuffer(8),
		audit.WithPublisherLogger(slog.Default()),
	)

	sent := audit.NewEvent(audit.EventVerificationDecided)
	sent.RequestID = "req-roundtrip"
	sent.Passed = true
	sent.Reason = "ok"
	sent.Overall = 0.91
	sent.SanctionsStatus = "screened"
	sent.NameHash = "0123456789abcdef"
	s.Require().NoError(publisher.Emit(ctx, sent))
	publisher.Close()

	received := make(chan audit.Event, 1)
	c, err := consumer.New(
		kafka.DefaultConsumerConfig(s.kafka.Brokers, "audit-roundtrip", topic),
		consumer.HandlerFunc(func(_ context.Context, msg *consumer.Message) error {
			event, err := audit.Decode(msg)
			if err != nil {
				return err
			}
			select {
			case received <- event:
			default:
			}
			return nil
		}),
		slog.Default(),
	)
	s.Require().NoError(err)
	defer c.Close()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go c.Run(runCtx) //nolint:errcheck

	select {
	case got := <-received:
		s.Equal(sent.ID, got.ID)
		s.Equal(audit.EventVerificationDecided, got.Type)
		s.Equal("req-roundtrip", got.RequestID)
		s.True(got.Passed)
		s.InDelta(0.91, got.Overall, 1e-9)
		s.Equal("0123456789abcdef", got.NameHash)
	case <-ctx.Done():
		s.Fail("audit event not consumed")
	}
}
