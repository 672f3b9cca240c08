//go:build integration

package producer_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"kycgate/internal/platform/kafka"
	"kycgate/internal/platform/kafka/consumer"
	"kycgate/internal/platform/kafka/producer"
	"kycgate/pkg/testutil/containers"
)

type ProducerIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaBroker
	producer *producer.Producer
}

func TestProducerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerIntegrationSuite))
}

func (s *ProducerIntegrationSuite) SetupSuite() {
	s.kafka = containers.Kafka(s.T())

	cfg := kafka.DefaultProducerConfig(s.kafka.Brokers)
	cfg.DeliveryTimeout = 10 * time.Second
	prod, err := producer.New(cfg, slog.Default())
	s.Require().NoError(err)
	s.producer = prod
}

func (s *ProducerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close() //nolint:errcheck
	}
}

// Produce only returns after broker acknowledgement, so the record is readable.
func (s *ProducerIntegrationSuite) TestProduceDeliversMessage() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	topic := "kyc.audit.produce"
	s.Require().NoError(s.kafka.CreateTopic(ctx, topic))

	err := s.producer.Produce(ctx, &producer.Message{
		Topic:   topic,
		Key:     []byte("req-1"),
		Value:   []byte(`{"action":"verification_decided"}`),
		Headers: map[string]string{"event_type": "verification_decided"},
	})
	s.Require().NoError(err)

	record, err := s.kafka.ReadRecord(ctx, topic, func(r *kgo.Record) bool {
		return string(r.Key) == "req-1"
	})
	s.Require().NoError(err)
	s.JSONEq(`{"action":"verification_decided"}`, string(record.Value))
}

func (s *ProducerIntegrationSuite) TestConsumerReceivesProducedMessages() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	topic := "kyc.audit.consume"
	s.Require().NoError(s.kafka.CreateTopic(ctx, topic))

	received := make(chan *consumer.Message, 1)
	c, err := consumer.New(
		kafka.DefaultConsumerConfig(s.kafka.Brokers, "consume-check", topic),
		consumer.HandlerFunc(func(_ context.Context, msg *consumer.Message) error {
			received <- msg
			return nil
		}),
		slog.Default(),
	)
	s.Require().NoError(err)
	defer c.Close()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go c.Run(runCtx) //nolint:errcheck

	s.Require().NoError(s.producer.Produce(ctx, &producer.Message{
		Topic:   topic,
		Key:     []byte("req-2"),
		Value:   []byte(`{}`),
		Headers: map[string]string{"event_type": "verification_decided"},
	}))

	select {
	case msg := <-received:
		s.Equal("req-2", string(msg.Key))
		s.Equal("verification_decided", msg.Headers["event_type"])
	case <-ctx.Done():
		s.Fail("timed out waiting for consumed message")
	}
}

func (s *ProducerIntegrationSuite) TestHealthy() {
	s.NoError(s.producer.Healthy(context.Background()))
}
