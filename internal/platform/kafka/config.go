// Package kafka holds the franz-go settings shared by the audit producer and
// the kycctl audit consumer.
package kafka

import (
	"errors"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

var errNoBrokers = errors.New("kafka brokers not configured")

// ProducerConfig tunes the audit producer.
type ProducerConfig struct {
	Brokers  []string
	ClientID string
	// LeaderAckOnly trades durability for latency: the leader alone acks and
	// idempotent writes are disabled.
	LeaderAckOnly   bool
	Retries         int
	Linger          time.Duration
	DeliveryTimeout time.Duration
}

// DefaultProducerConfig waits for all in-sync replicas.
func DefaultProducerConfig(brokers []string) ProducerConfig {
	return ProducerConfig{
		Brokers:         brokers,
		ClientID:        "kycgate",
		Retries:         3,
		Linger:          5 * time.Millisecond,
		DeliveryTimeout: 30 * time.Second,
	}
}

// Opts translates c into client options.
func (c ProducerConfig) Opts() ([]kgo.Opt, error) {
	if len(c.Brokers) == 0 {
		return nil, errNoBrokers
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(c.Brokers...),
		kgo.RecordRetries(c.Retries),
		kgo.ProducerLinger(c.Linger),
		kgo.AllowAutoTopicCreation(),
	}
	if c.ClientID != "" {
		opts = append(opts, kgo.ClientID(c.ClientID))
	}
	if c.LeaderAckOnly {
		opts = append(opts, kgo.RequiredAcks(kgo.LeaderAck()), kgo.DisableIdempotentWrite())
	} else {
		opts = append(opts, kgo.RequiredAcks(kgo.AllISRAcks()))
	}
	if c.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(c.DeliveryTimeout))
	}
	return opts, nil
}

// ConsumerConfig describes a consumer group reading Topics.
type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
	// FromStart consumes from the earliest offset when the group has no commit.
	FromStart bool
}

// DefaultConsumerConfig reads topics as groupID from the earliest offset.
func DefaultConsumerConfig(brokers []string, groupID string, topics ...string) ConsumerConfig {
	return ConsumerConfig{
		Brokers:   brokers,
		GroupID:   groupID,
		Topics:    topics,
		FromStart: true,
	}
}

// Opts translates c into client options with manual commits.
func (c ConsumerConfig) Opts() ([]kgo.Opt, error) {
	switch {
	case len(c.Brokers) == 0:
		return nil, errNoBrokers
	case c.GroupID == "":
		return nil, errors.New("kafka consumer group ID not configured")
	case len(c.Topics) == 0:
		return nil, errors.New("kafka consumer topics not configured")
	}
	reset := kgo.NewOffset().AtEnd()
	if c.FromStart {
		reset = kgo.NewOffset().AtStart()
	}
	return []kgo.Opt{
		kgo.SeedBrokers(c.Brokers...),
		kgo.ConsumerGroup(c.GroupID),
		kgo.ConsumeTopics(c.Topics...),
		kgo.ConsumeResetOffset(reset),
		kgo.DisableAutoCommit(),
	}, nil
}
