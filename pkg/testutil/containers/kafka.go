//go:build integration

// Package containers starts throwaway backing services for the integration
// suites. Every container is terminated when the owning test finishes.
package containers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

// KafkaBroker is a single-node KRaft cluster.
type KafkaBroker struct {
	Brokers []string
}

// Kafka starts a broker for tb.
func Kafka(tb testing.TB) *KafkaBroker {
	tb.Helper()
	ctx := context.Background()

	ctr, err := kafka.Run(ctx, kafkaImage, kafka.WithClusterID("kyc-audit-it"))
	testcontainers.CleanupContainer(tb, ctr)
	require.NoError(tb, err, "start kafka")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(tb, err, "kafka brokers")
	return &KafkaBroker{Brokers: brokers}
}

// CreateTopic creates a single-partition topic.
func (k *KafkaBroker) CreateTopic(ctx context.Context, topic string) error {
	client, err := kgo.NewClient(kgo.SeedBrokers(k.Brokers...))
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := kadm.NewClient(client).CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil {
		return err
	}
	return resp.Err
}

// ReadRecord consumes topic from the earliest offset until match accepts a
// record or ctx expires.
func (k *KafkaBroker) ReadRecord(ctx context.Context, topic string, match func(*kgo.Record) bool) (*kgo.Record, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(k.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.FetchMaxWait(500*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	for {
		fetches := client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if fetches.IsClientClosed() {
			return nil, errors.New("kafka client closed")
		}
		iter := fetches.RecordIter()
		for !iter.Done() {
			if r := iter.Next(); match(r) {
				return r, nil
			}
		}
	}
}
