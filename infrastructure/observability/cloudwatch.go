package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/queries/bus"
)

// metricNamespace groups all analytics metrics in CloudWatch
const metricNamespace = "CPSC/Analytics"

// publishTimeout bounds the background PutMetricData call
const publishTimeout = 5 * time.Second

// CloudWatchMetrics publishes query bus metrics to CloudWatch. Publishes
// happen in the background so metric delivery never blocks a query.
type CloudWatchMetrics struct {
	client *cloudwatch.Client
	logger *zap.Logger
}

// NewCloudWatchMetrics creates a new CloudWatch metrics publisher
func NewCloudWatchMetrics(client *cloudwatch.Client, logger *zap.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{
		client: client,
		logger: logger,
	}
}

// StartTimer starts a duration measurement for a metric
func (m *CloudWatchMetrics) StartTimer(metric, label string) bus.Timer {
	return &cloudWatchTimer{
		metrics: m,
		metric:  metric,
		label:   label,
		started: time.Now(),
	}
}

// Increment publishes a count of one for a metric
func (m *CloudWatchMetrics) Increment(metric, label string) {
	m.publish(metric, label, 1, types.StandardUnitCount)
}

func (m *CloudWatchMetrics) publish(metric, label string, value float64, unit types.StandardUnit) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace: aws.String(metricNamespace),
			MetricData: []types.MetricDatum{
				{
					MetricName: aws.String(metric),
					Value:      aws.Float64(value),
					Unit:       unit,
					Timestamp:  aws.Time(time.Now()),
					Dimensions: []types.Dimension{
						{
							Name:  aws.String("QueryType"),
							Value: aws.String(label),
						},
					},
				},
			},
		})
		if err != nil {
			m.logger.Warn("Failed to publish metric",
				zap.String("metric", metric),
				zap.String("label", label),
				zap.Error(err),
			)
		}
	}()
}

type cloudWatchTimer struct {
	metrics *CloudWatchMetrics
	metric  string
	label   string
	started time.Time
}

// Stop publishes the elapsed time in milliseconds
func (t *cloudWatchTimer) Stop() {
	elapsed := float64(time.Since(t.started).Milliseconds())
	t.metrics.publish(t.metric, t.label, elapsed, types.StandardUnitMilliseconds)
}

// NoopMetrics discards all metrics. Used when metrics are disabled.
type NoopMetrics struct{}

// StartTimer returns a timer that does nothing on Stop
func (NoopMetrics) StartTimer(metric, label string) bus.Timer { return noopTimer{} }

// Increment does nothing
func (NoopMetrics) Increment(metric, label string) {}

type noopTimer struct{}

func (noopTimer) Stop() {}
