// File: events/metrics.go
package events

import (
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"

	"go-meet-stake/logger"
)

// Namespace for all MeetStake metrics
var metricsNamespace = "MeetStake"

var (
	cwOnce   sync.Once
	cwClient *cloudwatch.CloudWatch
)

// metricsEnabled gates every CloudWatch call so dev boxes without AWS
// credentials never make network calls.
func metricsEnabled() bool {
	return os.Getenv("METRICS_ENABLED") == "true"
}

func cloudwatchClient() *cloudwatch.CloudWatch {
	cwOnce.Do(func() {
		cwClient = cloudwatch.New(session.Must(session.NewSession()))
	})
	return cwClient
}

// PublishMeetingBooked pushes a booking count and the staked amount.
func PublishMeetingBooked(stake int64) {
	putMetric("MeetingsBooked", 1, "Count")
	putMetric("StakedAmount", float64(stake), "Count")
}

// PublishCheckIn pushes a check-in count.
func PublishCheckIn() {
	putMetric("CheckIns", 1, "Count")
}

// PublishSettlement pushes a settlement count and the released amount.
func PublishSettlement(amount int64) {
	putMetric("Settlements", 1, "Count")
	putMetric("ReleasedAmount", float64(amount), "Count")
}

// -----------------------------------------------------------
// internal helper function to package up CloudWatch calls
// -----------------------------------------------------------
func putMetric(metricName string, value float64, unit string) {
	if !metricsEnabled() {
		return
	}

	_, err := cloudwatchClient().PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace: aws.String(metricsNamespace),
		MetricData: []*cloudwatch.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Timestamp:  aws.Time(time.Now()),
				Value:      aws.Float64(value),
				Unit:       aws.String(unit),
			},
		},
	})
	if err != nil {
		logger.Error.Printf("[putMetric] CloudWatch metric failed (%s): %v", metricName, err)
	}
}
