package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJob is the Pushgateway job name for report runs.
const PushJob = "outbreak_report"

// Push sends the run's metrics to a Prometheus Pushgateway, replacing any
// metrics previously pushed for the same job and source.
func Push(ctx context.Context, gatewayURL, source string, m *Metrics) error {
	err := push.New(gatewayURL, PushJob).
		Gatherer(m.Registry()).
		Grouping("source", source).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
