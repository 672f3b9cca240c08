package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Probe asks the cluster for its broker list, failing when no seed broker
// answers within timeout.
func Probe(ctx context.Context, brokers []string, timeout time.Duration) (kadm.BrokerDetails, error) {
	if len(brokers) == 0 {
		return nil, errNoBrokers
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DialTimeout(timeout),
		kgo.RequestRetries(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	details, err := kadm.NewClient(client).ListBrokers(ctx)
	if err != nil {
		return nil, fmt.Errorf("no kafka brokers reachable: %w", err)
	}
	return details, nil
}
