package cleanup

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// DefaultNamespace is the CloudWatch namespace sweep metrics go to.
const DefaultNamespace = "Programs/BannerCleanup"

// MetricPutter is the subset of the CloudWatch client used here.
type MetricPutter interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// PublishMetrics records the counts of one sweep.
func PublishMetrics(ctx context.Context, cw MetricPutter, namespace string, r Result) error {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	now := time.Now()
	datum := func(name string, v int) cwtypes.MetricDatum {
		return cwtypes.MetricDatum{
			MetricName: aws.String(name),
			Timestamp:  &now,
			Unit:       cwtypes.StandardUnitCount,
			Value:      aws.Float64(float64(v)),
		}
	}
	_, err := cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []cwtypes.MetricDatum{
			datum("ObjectsChecked", r.Checked),
			datum("ObjectsDeleted", r.Deleted),
			datum("ObjectsRetained", r.Retained),
			datum("DeleteErrors", r.Errors),
		},
	})
	return err
}
